package builder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/mesh"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

// DEFAULT_OUTPUT_FOLDER receives grids when no output path is given.
const DEFAULT_OUTPUT_FOLDER = "grid"

// DEFAULT_MAX_CELLS caps the voxel count of a build, a 512 MiB bitmap.
const DEFAULT_MAX_CELLS uint64 = 1 << 32

// Builder turns a triangle mesh into an occupancy grid.
type Builder struct {
	triangles    []geometry.Triangle
	scale        float32
	center       *math32.Vector3
	recenter     bool
	width        uint32
	height       uint32
	workers      int
	maxCells     uint64
	preprocessor voxel.Preprocessor
	progress     voxel.Progress
	logger       *slog.Logger
}

// NewBuilder creates a builder for triangles in mesh units.
func NewBuilder(triangles []geometry.Triangle) *Builder {
	return &Builder{
		triangles: triangles,
		scale:     1,
		workers:   1,
		maxCells:  DEFAULT_MAX_CELLS,
		logger:    slog.Default(),
	}
}

// SetScale scales the mesh around the origin before anything else.
func (b *Builder) SetScale(scale float32) {
	if scale > 0 {
		b.scale = scale
	}
}

// SetCenter fixes the grid center instead of using the mesh bounds center.
func (b *Builder) SetCenter(center math32.Vector3) {
	b.center = &center
}

// SetRecenter moves the scaled mesh so its bounding box center sits on the
// world origin before the grid is placed.
func (b *Builder) SetRecenter(recenter bool) {
	b.recenter = recenter
}

// SetSize fixes the grid size. A zero dimension is taken from the mesh bounds.
func (b *Builder) SetSize(width, height uint32) {
	b.width = width
	b.height = height
}

// SetWorkers sets the number of voxelization goroutines, 0 for one per CPU.
func (b *Builder) SetWorkers(workers int) {
	b.workers = workers
}

// SetMaxCells limits the voxel count Build accepts. Zero only rejects
// counts that overflow.
func (b *Builder) SetMaxCells(maxCells uint64) {
	b.maxCells = maxCells
}

func (b *Builder) SetPreprocessor(p voxel.Preprocessor) {
	b.preprocessor = p
}

func (b *Builder) SetProgress(p voxel.Progress) {
	b.progress = p
}

func (b *Builder) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Triangles returns the scaled triangles, recentered when requested.
func (b *Builder) Triangles() []geometry.Triangle {
	triangles := mesh.Scale(b.triangles, b.scale)
	if b.recenter {
		center := geometry.BoundsOf(triangles).Center()
		triangles = mesh.Translate(triangles, center.Mul(-1))
	}
	return triangles
}

// Frame resolves the grid placement: explicit values win, the rest comes
// from the bounding box of the scaled mesh.
func (b *Builder) Frame() voxel.Frame {
	return b.frameFor(b.Triangles())
}

func (b *Builder) frameFor(triangles []geometry.Triangle) voxel.Frame {
	frame := voxel.FitFrame(geometry.BoundsOf(triangles))
	if b.center != nil {
		frame.Center = *b.center
	}
	if b.width != 0 {
		frame.Width = b.width
	}
	if b.height != 0 {
		frame.Height = b.height
	}
	return frame
}

// Build voxelizes the mesh.
func (b *Builder) Build() (*voxel.Grid, error) {
	if len(b.triangles) == 0 {
		return nil, mesh.ErrNoTriangles
	}

	startTime := time.Now()
	triangles := b.Triangles()
	frame := b.frameFor(triangles)
	if frame.Cells() == 0 {
		return nil, fmt.Errorf("empty grid %v: set width and height explicitly", frame)
	}
	if err := frame.CheckSize(b.maxCells); err != nil {
		return nil, err
	}
	b.logger.Debug("grid frame resolved", "frame", frame.String(), "triangles", len(triangles))

	opts := []voxel.Option{voxel.WithWorkers(b.workers)}
	if b.progress != nil {
		opts = append(opts, voxel.WithProgress(b.progress))
	}
	if b.preprocessor != nil {
		opts = append(opts, voxel.WithPreprocessor(b.preprocessor))
	}
	grid := voxel.Voxelize(triangles, frame, opts...)

	b.logger.Info("grid built",
		"width", grid.Width(),
		"height", grid.Height(),
		"obstacles", grid.ObstacleCount(),
		"elapsed", time.Since(startTime))
	return grid, nil
}

// LoadTriangles reads the mesh named by config, or builds its primitive.
func LoadTriangles(config BuildConfig) ([]geometry.Triangle, error) {
	if config.Primitive != "" {
		return mesh.Primitive(config.Primitive)
	}
	if config.Input == "" {
		return nil, fmt.Errorf("no input mesh given")
	}
	return mesh.Load(config.Input)
}

// OutputPath returns config.Output or the default grid/<stem>.dat.
func OutputPath(config BuildConfig) string {
	if config.Output != "" {
		return config.Output
	}
	name := config.Input
	if config.Primitive != "" {
		name = strings.NewReplacer(":", "_", ",", "_").Replace(config.Primitive)
	}
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join(DEFAULT_OUTPUT_FOLDER, stem+".dat")
}

// Preprocessor returns the triangle filters selected by config. Triangles
// outside the grid are always dropped since they cannot touch it.
func Preprocessor(config BuildConfig) voxel.Preprocessor {
	if config.SkipDegenerate {
		return voxel.Chain(voxel.SkipDegenerate{}, voxel.ClipToFrame{})
	}
	return voxel.ClipToFrame{}
}

// BuildAndSave 构建并保存网格（一步到位）
func BuildAndSave(config BuildConfig, progress voxel.Progress, logger *slog.Logger) (*voxel.Grid, string, error) {
	triangles, err := LoadTriangles(config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load mesh: %w", err)
	}

	builder := NewBuilder(triangles)
	builder.SetScale(config.Scale)
	builder.SetRecenter(config.Recenter)
	builder.SetSize(config.Width, config.Height)
	if config.Center != nil {
		builder.SetCenter(*config.Center)
	}
	builder.SetWorkers(config.Workers)
	builder.SetPreprocessor(Preprocessor(config))
	builder.SetProgress(progress)
	builder.SetLogger(logger)

	grid, err := builder.Build()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build grid: %w", err)
	}

	output := OutputPath(config)
	if err := Save(grid, output, config.Gzip); err != nil {
		return nil, "", fmt.Errorf("failed to save grid: %w", err)
	}
	return grid, output, nil
}

// BatchBuild 批量构建多个网格文件
func BatchBuild(configs []BuildConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for i, config := range configs {
		fmt.Fprintf(os.Stdout, "Building grid file %d/%d: %s\n", i+1, len(configs), OutputPath(config))

		if _, _, err := BuildAndSave(config, NewLogProgress(logger, config.Input), logger); err != nil {
			return fmt.Errorf("failed to build %s: %w", OutputPath(config), err)
		}
	}
	return nil
}
