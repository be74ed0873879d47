package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negaisa/obj-to-pathfinding-grid/builder"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

func TestParseCell(t *testing.T) {
	v, err := parseCell("1, 2,3")
	require.NoError(t, err)
	assert.Equal(t, math32.Vec3u(1, 2, 3), v)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c", "-1,0,0"} {
		_, err := parseCell(bad)
		assert.Error(t, err, bad)
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(os.Stderr)
	return cmd.Execute()
}

func TestConvertInfoPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tri.json")
	require.NoError(t, os.WriteFile(input,
		[]byte(`[{"a":{"x":0,"y":0,"z":0},"b":{"x":5,"y":5,"z":0},"c":{"x":-5,"y":-5,"z":0}}]`), 0o644))
	output := filepath.Join(dir, "tri.dat")

	require.NoError(t, run(t, "convert", "-i", input, "-o", output,
		"-w", "10", "-H", "10", "-x", "0", "-y", "0", "-z", "0", "--workers", "2", "--log-level", "warn"))

	grid, err := builder.Load(output)
	require.NoError(t, err)
	assert.Equal(t, uint64(28), grid.ObstacleCount())

	info, err := builder.GetFileInfo(output)
	require.NoError(t, err)
	assert.True(t, info.Compressed)

	assert.NoError(t, run(t, "info", output))
	assert.NoError(t, run(t, "info", output, "--obstacles"))
	assert.NoError(t, run(t, "path", output, "--from", "0,9,5", "--to", "9,0,5", "--smooth"))
	assert.Error(t, run(t, "path", output, "--from", "3,3,5", "--to", "9,0,5"))
	assert.Error(t, run(t, "info", filepath.Join(dir, "missing.dat")))

	// recentering the triangle keeps it on the default grid center
	recentered := filepath.Join(dir, "recentered.dat")
	require.NoError(t, run(t, "convert", "-i", input, "-o", recentered,
		"-w", "10", "-H", "10", "--recenter", "--no-gzip", "--log-level", "warn"))
	grid, err = builder.Load(recentered)
	require.NoError(t, err)
	assert.Equal(t, math32.Vec3(0, 0, 0), grid.Center())
	assert.Equal(t, uint64(28), grid.ObstacleCount())
}

func TestConvertPrimitive(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "grid.toml")
	require.NoError(t, os.WriteFile(config, []byte("[output]\ndir = \""+filepath.ToSlash(dir)+"\"\ngzip = false\n"), 0o644))

	require.NoError(t, run(t, "--config", config, "convert", "--primitive", "box:4,4,4", "--log-level", "error"))

	info, err := builder.GetFileInfo(filepath.Join(dir, "box_4_4_4.dat"))
	require.NoError(t, err)
	assert.False(t, info.Compressed)
	assert.NotZero(t, info.Obstacles)

	assert.Error(t, run(t, "convert"))
	assert.Error(t, run(t, "--config", filepath.Join(dir, "missing.toml"), "info", "x.dat"))
}
