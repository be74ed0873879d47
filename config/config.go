// Package config loads converter settings from defaults, an optional TOML or
// YAML file and command line overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/negaisa/obj-to-pathfinding-grid/builder"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// Config is the complete converter configuration.
type Config struct {
	Grid    GridConfig    `mapstructure:"grid"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type GridConfig struct {
	// Zero width or height is derived from the mesh bounds.
	Width  uint32  `mapstructure:"width"`
	Height uint32  `mapstructure:"height"`
	Scale  float32 `mapstructure:"scale"`

	// Center is [x, y, z]; empty means the mesh bounds center.
	Center         []float32 `mapstructure:"center"`
	Workers        int       `mapstructure:"workers"`
	SkipDegenerate bool      `mapstructure:"skip_degenerate"`
	Recenter       bool      `mapstructure:"recenter"`
}

type OutputConfig struct {
	Dir  string `mapstructure:"dir"`
	Gzip bool   `mapstructure:"gzip"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	CacheSize      int      `mapstructure:"cache_size"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// MaxUploadBytes bounds the mesh body of a convert request.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	// MaxCells bounds the voxel count of a convert request.
	MaxCells uint64 `mapstructure:"max_cells"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Scale:   1,
			Workers: 1,
		},
		Output: OutputConfig{
			Dir:  builder.DEFAULT_OUTPUT_FOLDER,
			Gzip: true,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			CacheSize:      16,
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 64 << 20,
			MaxCells:       1 << 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overridden by the file at path. An empty path
// returns the defaults. "~" is expanded to the home directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.decode(content, filepath.Ext(path)); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// decode merges a TOML or YAML document into cfg. Keys absent from the
// document keep their current values.
func (cfg *Config) decode(content []byte, ext string) error {
	raw := make(map[string]interface{})
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return err
		}
	case ".toml", "":
		if err := toml.Unmarshal(content, &raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Validate checks values that cannot be corrected silently.
func (cfg *Config) Validate() error {
	if cfg.Grid.Scale <= 0 {
		return fmt.Errorf("grid.scale must be positive, got %v", cfg.Grid.Scale)
	}
	if n := len(cfg.Grid.Center); n != 0 && n != 3 {
		return fmt.Errorf("grid.center needs 3 values, got %d", n)
	}
	if cfg.Grid.Workers < 0 {
		return fmt.Errorf("grid.workers must not be negative")
	}
	if cfg.Server.CacheSize <= 0 {
		return fmt.Errorf("server.cache_size must be positive")
	}
	if cfg.Server.MaxCells == 0 {
		return fmt.Errorf("server.max_cells must be positive")
	}
	if _, err := ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging.format %q", cfg.Logging.Format)
	}
	return nil
}

// CenterVector returns the configured grid center, nil when unset.
func (g GridConfig) CenterVector() *math32.Vector3 {
	if len(g.Center) != 3 {
		return nil
	}
	return &math32.Vector3{X: g.Center[0], Y: g.Center[1], Z: g.Center[2]}
}

// BuildConfig turns the configuration into a conversion request for input.
// The output goes to Output.Dir/<input stem>.dat unless output is set.
func (cfg *Config) BuildConfig(input, output string) builder.BuildConfig {
	if output == "" && input != "" {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output = filepath.Join(cfg.Output.Dir, stem+".dat")
	}
	return builder.BuildConfig{
		Input:          input,
		Output:         output,
		Width:          cfg.Grid.Width,
		Height:         cfg.Grid.Height,
		Scale:          cfg.Grid.Scale,
		Center:         cfg.Grid.CenterVector(),
		Workers:        cfg.Grid.Workers,
		Gzip:           cfg.Output.Gzip,
		SkipDegenerate: cfg.Grid.SkipDegenerate,
		Recenter:       cfg.Grid.Recenter,
	}
}
