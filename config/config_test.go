package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

const sampleTOML = `
[grid]
width = 64
height = "32"
scale = 0.5
center = [1, 2.5, -3]
workers = 4
recenter = true

[output]
gzip = false

[logging]
level = "debug"
format = "json"
`

const sampleYAML = `
grid:
  width: 64
  height: 32
  center: [1, 2.5, -3]
server:
  addr: "127.0.0.1:9000"
  allowed_origins:
    - http://localhost:3000
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Nil(t, cfg.Grid.CenterVector())
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(writeFile(t, "grid.toml", sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, uint32(64), cfg.Grid.Width)
	assert.Equal(t, uint32(32), cfg.Grid.Height)
	assert.Equal(t, float32(0.5), cfg.Grid.Scale)
	assert.Equal(t, &math32.Vector3{X: 1, Y: 2.5, Z: -3}, cfg.Grid.CenterVector())
	assert.Equal(t, 4, cfg.Grid.Workers)
	assert.False(t, cfg.Output.Gzip)
	assert.Equal(t, "json", cfg.Logging.Format)

	// untouched sections keep their defaults
	assert.Equal(t, "grid", cfg.Output.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, uint64(1<<30), cfg.Server.MaxCells)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "grid.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, uint32(64), cfg.Grid.Width)
	assert.Equal(t, float32(1), cfg.Grid.Scale)
	assert.Equal(t, []float32{1, 2.5, -3}, cfg.Grid.Center)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown key", "a.toml", "[grid]\ndepth = 3\n"},
		{"bad syntax", "b.toml", "[grid\n"},
		{"bad yaml", "c.yml", "grid: [1, 2\n"},
		{"unsupported format", "d.ini", "[grid]\n"},
		{"zero scale", "e.toml", "[grid]\nscale = 0\n"},
		{"short center", "f.toml", "[grid]\ncenter = [1, 2]\n"},
		{"bad level", "g.toml", "[logging]\nlevel = \"loud\"\n"},
		{"bad format", "h.toml", "[logging]\nformat = \"xml\"\n"},
		{"negative workers", "i.toml", "[grid]\nworkers = -1\n"},
		{"zero max cells", "j.toml", "[server]\nmax_cells = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	require.NoError(t, os.WriteFile(filepath.Join(home, "grid.toml"), []byte("[grid]\nwidth = 12\n"), 0o644))
	cfg, err := Load("~/grid.toml")
	require.NoError(t, err)
	assert.Equal(t, uint32(12), cfg.Grid.Width)
}

func TestBuildConfig(t *testing.T) {
	cfg, err := Load(writeFile(t, "grid.toml", sampleTOML))
	require.NoError(t, err)

	bc := cfg.BuildConfig("meshes/castle.obj", "")
	assert.Equal(t, "meshes/castle.obj", bc.Input)
	assert.Equal(t, filepath.Join("grid", "castle.dat"), bc.Output)
	assert.Equal(t, uint32(64), bc.Width)
	assert.Equal(t, uint32(32), bc.Height)
	assert.Equal(t, float32(0.5), bc.Scale)
	assert.Equal(t, &math32.Vector3{X: 1, Y: 2.5, Z: -3}, bc.Center)
	assert.Equal(t, 4, bc.Workers)
	assert.False(t, bc.Gzip)
	assert.True(t, bc.Recenter)

	assert.Equal(t, "out.dat", cfg.BuildConfig("castle.obj", "out.dat").Output)
	assert.Empty(t, cfg.BuildConfig("", "").Output)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		level, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, level)
	}

	_, err := ParseLevel("")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "width", 64)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, float64(64), record["width"])

	buf.Reset()
	LoggingConfig{Level: "info", Format: "text"}.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
