package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/negaisa/obj-to-pathfinding-grid/builder"
	"github.com/negaisa/obj-to-pathfinding-grid/config"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/query"
	"github.com/negaisa/obj-to-pathfinding-grid/server"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

// app holds the state shared by all commands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "obj-to-pathfinding-grid",
		Short:             "Voxelize triangle meshes into occupancy grids for pathfinding",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML or YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "text or json")

	root.AddCommand(
		a.convertCommand(),
		a.infoCommand(),
		a.pathCommand(),
		a.serveCommand(),
		a.watchCommand(),
	)
	return root
}

func (a *app) convertCommand() *cobra.Command {
	var (
		input, output, primitive string
		width, height            uint32
		scale                    float32
		cx, cy, cz               float32
		workers                  int
		noGzip, skipDegenerate   bool
		recenter                 bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a mesh file or primitive into a grid file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" && primitive == "" {
				return fmt.Errorf("either --input or --primitive is required")
			}
			flags := cmd.Flags()
			cfg := a.cfg.BuildConfig(input, output)
			cfg.Primitive = primitive
			if primitive != "" && output == "" {
				name := filepath.Base(builder.OutputPath(builder.BuildConfig{Primitive: primitive}))
				cfg.Output = filepath.Join(a.cfg.Output.Dir, name)
			}
			if flags.Changed("width") {
				cfg.Width = width
			}
			if flags.Changed("height") {
				cfg.Height = height
			}
			if flags.Changed("scale") {
				cfg.Scale = scale
			}
			if flags.Changed("x") || flags.Changed("y") || flags.Changed("z") {
				center := math32.Vec3(cx, cy, cz)
				if cfg.Center != nil {
					center = *cfg.Center
					if flags.Changed("x") {
						center.X = cx
					}
					if flags.Changed("y") {
						center.Y = cy
					}
					if flags.Changed("z") {
						center.Z = cz
					}
				}
				cfg.Center = &center
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if noGzip {
				cfg.Gzip = false
			}
			if skipDegenerate {
				cfg.SkipDegenerate = true
			}
			if recenter {
				cfg.Recenter = true
			}

			grid, path, err := builder.BuildAndSave(cfg, builder.NewStdOutProgress(), a.logger)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %dx%dx%d grid with %d obstacles to %s\n",
				grid.Width(), grid.Width(), grid.Height(), grid.ObstacleCount(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "mesh file (.obj or .json)")
	f.StringVarP(&output, "output", "o", "", "grid file, default <output dir>/<input name>.dat")
	f.StringVar(&primitive, "primitive", "", "procedural mesh instead of a file: box:X,Y,Z or cylinder:H,R")
	f.Uint32VarP(&width, "width", "w", 0, "grid width and depth in voxels, default from mesh bounds")
	f.Uint32VarP(&height, "height", "H", 0, "grid height in voxels, default from mesh bounds")
	f.Float32VarP(&scale, "scale", "s", 1, "mesh scale factor")
	f.Float32VarP(&cx, "x", "x", 0, "grid center x, default from mesh bounds")
	f.Float32VarP(&cy, "y", "y", 0, "grid center y, default from mesh bounds")
	f.Float32VarP(&cz, "z", "z", 0, "grid center z, default from mesh bounds")
	f.IntVar(&workers, "workers", 1, "voxelization goroutines, 0 for one per CPU")
	f.BoolVar(&noGzip, "no-gzip", false, "write the grid file uncompressed")
	f.BoolVar(&skipDegenerate, "skip-degenerate", false, "ignore zero-area triangles")
	f.BoolVar(&recenter, "recenter", false, "move the mesh bounds center to the origin first")
	return cmd
}

func (a *app) infoCommand() *cobra.Command {
	var listObstacles bool

	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Print information about a grid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := builder.GetFileInfo(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("File:       %s (%d bytes, compressed: %t)\n", info.Filename, info.FileSize, info.Compressed)
			fmt.Printf("Version:    %d\n", info.Version)
			fmt.Printf("Size:       %dx%dx%d\n", info.Width, info.Width, info.Height)
			fmt.Printf("Center:     %v\n", info.Center)
			fmt.Printf("Obstacles:  %d (%.2f%%)\n", info.Obstacles, info.FillRatio*100)
			fmt.Printf("Memory:     %d bytes\n", info.DataSize)
			fmt.Printf("Modified:   %s\n", info.ModTime.Format("2006-01-02 15:04:05"))
			if !listObstacles {
				return nil
			}

			grid, err := builder.Load(args[0])
			if err != nil {
				return err
			}
			frame := grid.Frame()
			grid.ForEachObstacle(func(local math32.Vector3u) bool {
				fmt.Printf("%v %v\n", local, voxel.ToWorld(local, frame))
				return true
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&listObstacles, "obstacles", false, "also print every obstacle as local and world coordinates")
	return cmd
}

// parseCell parses "x,y,z" grid coordinates.
func parseCell(s string) (math32.Vector3u, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math32.Vector3u{}, fmt.Errorf("invalid coordinate %q, want x,y,z", s)
	}
	var v [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return math32.Vector3u{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
		}
		v[i] = uint32(n)
	}
	return math32.Vec3u(v[0], v[1], v[2]), nil
}

func (a *app) pathCommand() *cobra.Command {
	var from, to string
	var smooth, fourWay bool

	cmd := &cobra.Command{
		Use:   "path FILE",
		Short: "Find a path between two voxels of a grid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseCell(from)
			if err != nil {
				return err
			}
			end, err := parseCell(to)
			if err != nil {
				return err
			}

			q, err := query.LoadAndQuery(args[0])
			if err != nil {
				return err
			}
			q.SetLogger(a.logger)
			if fourWay {
				options := q.GetOptions()
				options.AllowDiagonal = false
				q.SetOptions(options)
			}

			path, err := q.FindPath(start, end)
			if err != nil {
				return err
			}
			if smooth {
				path = q.SmoothPath(path)
			}
			for _, cell := range path {
				fmt.Println(cell)
			}
			fmt.Printf("%d points, length %.2f\n", len(path), query.PathLength(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start voxel x,y,z")
	cmd.Flags().StringVar(&to, "to", "", "end voxel x,y,z")
	cmd.Flags().BoolVar(&smooth, "smooth", false, "reduce the path with line of sight checks")
	cmd.Flags().BoolVar(&fourWay, "no-diagonal", false, "move through voxel faces only")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.New(server.Options{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				CacheSize:      a.cfg.Server.CacheSize,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
				MaxCells:       a.cfg.Server.MaxCells,
				Workers:        a.cfg.Grid.Workers,
			}, a.logger)
			return s.Run(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	var outputDir string
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Rebuild grids whenever a mesh file in DIR is written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output-dir") {
				outputDir = a.cfg.Output.Dir
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &builder.Watcher{
				Dir:       args[0],
				Template:  a.cfg.BuildConfig("", ""),
				OutputDir: outputDir,
				Logger:    a.logger,
				Initial:   initial,
				OnBuilt: func(input, output string) {
					fmt.Printf("%s -> %s\n", input, output)
				},
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for grid files")
	cmd.Flags().BoolVar(&initial, "initial", false, "build the meshes already in DIR first")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
