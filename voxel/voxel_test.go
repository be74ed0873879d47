package voxel

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

func vec(x, y, z float32) math32.Vector3 {
	return math32.Vector3{X: x, Y: y, Z: z}
}

func local(x, y, z uint32) math32.Vector3u {
	return math32.Vector3u{X: x, Y: y, Z: z}
}

func diagonalTriangle() geometry.Triangle {
	return geometry.NewTriangle(vec(0, 0, 0), vec(5, 5, 0), vec(-5, -5, 0))
}

// diagonalBand is the staircase from (0,0) to (9,9) at z=5.
func diagonalBand() []math32.Vector3u {
	var band []math32.Vector3u
	for x := uint32(0); x < 10; x++ {
		for y := uint32(0); y < 10; y++ {
			if x <= y+1 && y <= x+1 {
				band = append(band, local(x, y, 5))
			}
		}
	}
	return band
}

// randomMesh returns triangles scattered in a box of the given half extent.
func randomMesh(seed int64, count int, extent float32) []geometry.Triangle {
	rng := rand.New(rand.NewSource(seed))
	point := func() math32.Vector3 {
		return vec(
			(rng.Float32()*2-1)*extent,
			(rng.Float32()*2-1)*extent,
			(rng.Float32()*2-1)*extent,
		)
	}
	triangles := make([]geometry.Triangle, count)
	for i := range triangles {
		a := point()
		triangles[i] = geometry.NewTriangle(a, a.Add(vec(rng.Float32()*4, rng.Float32()*4, 0)), a.Add(vec(0, rng.Float32()*4, rng.Float32()*4)))
	}
	return triangles
}

func TestToLocal(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 500, 500)

	tests := []struct {
		name  string
		world math32.Vector3
		want  math32.Vector3u
	}{
		{"center", vec(0, 0, 0), local(250, 250, 250)},
		{"offset", vec(10, -20, 30), local(260, 230, 280)},
		{"rounds half away from zero", vec(0.5, -0.5, 1.49), local(251, 249, 251)},
		{"clamps high", vec(1000, 251, 1e9), local(500, 500, 500)},
		{"clamps low", vec(-1000, -251, -1e9), local(0, 0, 0)},
		{"mixed", vec(-300, 300, 0), local(0, 500, 250)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLocal(tt.world, frame))
		})
	}
}

func TestToLocalOffsetCenter(t *testing.T) {
	frame := NewFrame(vec(100, -50, 7), 10, 4)

	assert.Equal(t, local(5, 5, 2), ToLocal(vec(100, -50, 7), frame))
	assert.Equal(t, local(0, 10, 4), ToLocal(vec(0, 0, 100), frame))
	assert.Equal(t, math32.Vector3i{X: 95, Y: -55, Z: 5}, ToWorld(local(0, 0, 0), frame))
	assert.Equal(t, math32.Vector3i{X: 100, Y: -50, Z: 7}, ToWorld(local(5, 5, 2), frame))
}

func TestToLocalClampLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		frame := NewFrame(vec(rng.Float32()*200-100, rng.Float32()*200-100, rng.Float32()*200-100),
			uint32(rng.Intn(64)+1), uint32(rng.Intn(64)+1))
		world := vec(rng.Float32()*2e6-1e6, rng.Float32()*2e6-1e6, rng.Float32()*2e6-1e6)

		got := ToLocal(world, frame)
		require.LessOrEqual(t, got.X, frame.Width)
		require.LessOrEqual(t, got.Y, frame.Width)
		require.LessOrEqual(t, got.Z, frame.Height)
	}
}

func TestToLocalNonFinite(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)
	inf := math32.Inf(1)

	assert.Equal(t, local(0, 10, 0), ToLocal(vec(-inf, inf, inf-inf), frame))
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		center := vec(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
		frame := NewFrame(center, 40, 20)

		world := center.Add(vec(rng.Float32()*40-20, rng.Float32()*40-20, rng.Float32()*20-10))
		back := ToWorld(ToLocal(world, frame), frame).ToVector3()

		require.LessOrEqual(t, math32.Abs(back.X-world.X), float32(1), "world %v", world)
		require.LessOrEqual(t, math32.Abs(back.Y-world.Y), float32(1), "world %v", world)
		require.LessOrEqual(t, math32.Abs(back.Z-world.Z), float32(1), "world %v", world)
	}
}

func TestFitFrame(t *testing.T) {
	bounds := geometry.BoundsOf([]geometry.Triangle{
		geometry.NewTriangle(vec(-4, -2, 0), vec(6, 3, 0), vec(0, 0, 7.9)),
	})
	frame := FitFrame(bounds)

	assert.Equal(t, vec(1, 0.5, 3.95), frame.Center)
	assert.Equal(t, uint32(10), frame.Width)
	assert.Equal(t, uint32(7), frame.Height)

	assert.Equal(t, Frame{}, FitFrame(geometry.EmptyAABB()))
}

func TestFrameWorldBounds(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 4)
	bounds := frame.WorldBounds()

	assert.Equal(t, vec(-5.5, -5.5, -2.5), bounds.Min)
	assert.Equal(t, vec(4.5, 4.5, 1.5), bounds.Max)
	assert.Equal(t, uint64(400), frame.Cells())
	assert.True(t, frame.Contains(local(9, 9, 3)))
	assert.False(t, frame.Contains(local(10, 0, 0)))
	assert.False(t, frame.Contains(local(0, 0, 4)))
}

func TestFrameCheckSize(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)
	assert.NoError(t, frame.CheckSize(0))
	assert.NoError(t, frame.CheckSize(1000))
	assert.True(t, errors.Is(frame.CheckSize(999), ErrGridTooLarge))

	huge := NewFrame(vec(0, 0, 0), 1<<22, 1<<22)
	assert.Equal(t, uint64(math.MaxUint64), huge.Cells())
	assert.True(t, errors.Is(huge.CheckSize(0), ErrGridTooLarge))

	widest := NewFrame(vec(0, 0, 0), math.MaxUint32, math.MaxUint32)
	assert.Equal(t, uint64(math.MaxUint64), widest.Cells())

	_, err := GridFromBitmap(huge, nil)
	assert.True(t, errors.Is(err, ErrGridTooLarge))
}

func TestFindObstaclesDiagonal(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)

	obstacles := FindObstacles(diagonalTriangle(), frame)

	require.Len(t, obstacles, 28)
	assert.Equal(t, diagonalBand(), obstacles)
	assert.Equal(t, local(0, 0, 5), obstacles[0])
	assert.Equal(t, local(0, 1, 5), obstacles[1])
	assert.Equal(t, local(1, 0, 5), obstacles[2])
	assert.Equal(t, local(9, 9, 5), obstacles[27])
}

// scanBefore orders voxels by x, then y, then z.
func scanBefore(a, b math32.Vector3u) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

func TestFindObstaclesOrdered(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 32, 32)
	for _, tri := range randomMesh(3, 50, 12) {
		obstacles := FindObstacles(tri, frame)
		for i := 1; i < len(obstacles); i++ {
			require.True(t, scanBefore(obstacles[i-1], obstacles[i]), "%v before %v", obstacles[i-1], obstacles[i])
		}
		for _, o := range obstacles {
			require.True(t, frame.Contains(o), "%v outside %v", o, frame)
			require.True(t, tri.IsInside(ToWorld(o, frame)))
		}
	}
}

func TestFindObstaclesOutsideFrame(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)
	far := geometry.NewTriangle(vec(100, 100, 100), vec(105, 100, 100), vec(100, 105, 100))

	assert.Empty(t, FindObstacles(far, frame))
}

func TestGrid(t *testing.T) {
	grid := NewGrid(4, 3)

	assert.Equal(t, uint32(4), grid.Width())
	assert.Equal(t, uint32(3), grid.Height())
	assert.Equal(t, uint64(48), grid.GetVoxelCount())
	assert.Zero(t, grid.ObstacleCount())

	require.True(t, grid.SetObstacle(1, 2, 0))
	before := append(math32.Bitmap(nil), grid.Bitmap()...)
	require.True(t, grid.SetObstacle(1, 2, 0))
	assert.Equal(t, before, grid.Bitmap())
	assert.Equal(t, uint64(1), grid.ObstacleCount())

	assert.True(t, grid.IsObstacle(1, 2, 0))
	assert.False(t, grid.IsObstacle(2, 1, 0))
	assert.False(t, grid.IsWalkable(local(1, 2, 0)))
	assert.True(t, grid.IsWalkable(local(2, 1, 0)))

	assert.False(t, grid.SetObstacle(4, 0, 0))
	assert.False(t, grid.SetObstacle(0, 0, 3))
	assert.False(t, grid.IsObstacle(4, 0, 0))
	assert.False(t, grid.IsWalkable(local(0, 0, 3)))

	index, ok := grid.GetIndex(3, 2, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(27), index)
	assert.Equal(t, local(3, 2, 1), grid.GetCoordinate(index))

	grid.SetObstacle(3, 3, 2)
	var seen []math32.Vector3u
	grid.ForEachObstacle(func(v math32.Vector3u) bool {
		seen = append(seen, v)
		return true
	})
	assert.Equal(t, []math32.Vector3u{local(1, 2, 0), local(3, 3, 2)}, seen)
	assert.InDelta(t, 2.0/48.0, grid.FillRatio(), 1e-9)

	seen = nil
	grid.ForEachObstacle(func(v math32.Vector3u) bool {
		seen = append(seen, v)
		return false
	})
	assert.Len(t, seen, 1)
}

func TestGridFromBitmap(t *testing.T) {
	frame := NewFrame(vec(1, 2, 3), 8, 2)
	grid := NewGridWithFrame(frame)
	grid.SetObstacle(7, 7, 1)

	restored, err := GridFromBitmap(frame, grid.Bitmap())
	require.NoError(t, err)
	assert.True(t, restored.IsObstacle(7, 7, 1))
	assert.Equal(t, frame, restored.Frame())
	assert.True(t, restored.IsWorldObstacle(vec(4, 5, 3)))

	_, err = GridFromBitmap(frame, math32.Bitmap{0})
	assert.Error(t, err)
}

func TestVoxelizeDiagonal(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)

	grid := Voxelize([]geometry.Triangle{diagonalTriangle()}, frame)

	assert.Equal(t, uint64(28), grid.ObstacleCount())
	for _, v := range diagonalBand() {
		assert.True(t, grid.IsObstacle(v.X, v.Y, v.Z), "%v", v)
	}
	assert.False(t, grid.IsObstacle(0, 2, 5))
	assert.False(t, grid.IsObstacle(5, 5, 4))
}

type recordingProgress struct {
	mu       sync.Mutex
	events   []string
	percents []float32
}

func (p *recordingProgress) Starting() {
	p.events = append(p.events, "starting")
}

func (p *recordingProgress) UpdateProgress(percent float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percents = append(p.percents, percent)
}

func (p *recordingProgress) Finished() {
	p.events = append(p.events, "finished")
}

func TestVoxelizeProgress(t *testing.T) {
	triangles := randomMesh(4, 7, 5)

	for _, workers := range []int{1, 3} {
		progress := &recordingProgress{}
		Voxelize(triangles, NewFrame(vec(0, 0, 0), 16, 16), WithProgress(progress), WithWorkers(workers))

		require.Len(t, progress.percents, len(triangles))
		for i := 1; i < len(progress.percents); i++ {
			assert.LessOrEqual(t, progress.percents[i-1], progress.percents[i])
		}
		assert.Equal(t, float32(100), progress.percents[len(progress.percents)-1])
		assert.InDelta(t, 100.0/7.0, progress.percents[0], 1e-4)
		assert.Equal(t, []string{"starting", "finished"}, progress.events)
	}
}

func TestVoxelizeEmpty(t *testing.T) {
	calls := 0
	grid := Voxelize(nil, NewFrame(vec(0, 0, 0), 4, 4), WithProgress(ProgressFunc(func(float32) { calls++ })))

	assert.Zero(t, calls)
	assert.Zero(t, grid.ObstacleCount())
	assert.Equal(t, uint32(4), grid.Width())
}

func TestVoxelizePreprocessor(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)
	other := geometry.NewTriangle(vec(-3, -3, 3), vec(3, -3, 3), vec(-3, 3, 3))
	triangles := []geometry.Triangle{diagonalTriangle(), other}

	skipFirst := PreprocessorFunc(func(tri geometry.Triangle, _ Frame) (geometry.Triangle, bool) {
		return tri, tri != triangles[0]
	})

	var percents []float32
	grid := Voxelize(triangles, frame, WithPreprocessor(skipFirst), WithProgress(ProgressFunc(func(p float32) {
		percents = append(percents, p)
	})))

	assert.Equal(t, []float32{50, 100}, percents)
	assert.Equal(t, Voxelize(triangles[1:], frame).Bitmap(), grid.Bitmap())
	assert.False(t, grid.IsObstacle(5, 5, 5))

	moved := PreprocessorFunc(func(tri geometry.Triangle, _ Frame) (geometry.Triangle, bool) {
		return tri.Translate(vec(0, 0, 2)), true
	})
	grid = Voxelize(triangles[:1], frame, WithPreprocessor(moved))
	assert.Equal(t, uint64(28), grid.ObstacleCount())
	assert.True(t, grid.IsObstacle(0, 0, 7))
}

func TestPreprocessors(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 10, 10)
	flat := geometry.NewTriangle(vec(-3, -3, 0), vec(3, -3, 0), vec(-3, 3, 0))
	far := flat.Translate(vec(50, 0, 0))
	nan := geometry.NewTriangle(vec(math32.Inf(1), 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	// bounds overlap the frame corner, the triangle itself stays outside
	corner := geometry.NewTriangle(vec(4, 8, 0), vec(8, 4, 0), vec(8, 8, 0))

	tests := []struct {
		name string
		p    Preprocessor
		tri  geometry.Triangle
		want bool
	}{
		{"noop keeps degenerate", NoOpPreprocessor{}, diagonalTriangle(), true},
		{"skip degenerate", SkipDegenerate{}, diagonalTriangle(), false},
		{"skip non-finite", SkipDegenerate{}, nan, false},
		{"keep regular", SkipDegenerate{}, flat, true},
		{"clip keeps inside", ClipToFrame{}, flat, true},
		{"clip drops outside", ClipToFrame{}, far, false},
		{"clip drops corner miss", ClipToFrame{}, corner, false},
		{"chain", Chain(SkipDegenerate{}, ClipToFrame{}), far, false},
		{"chain passes", Chain(SkipDegenerate{}, ClipToFrame{}), flat, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.p.Preprocess(tt.tri, frame)
			assert.Equal(t, tt.want, ok)
		})
	}
	assert.Empty(t, FindObstacles(corner, frame))
}

func TestChainTransforms(t *testing.T) {
	up := PreprocessorFunc(func(tri geometry.Triangle, _ Frame) (geometry.Triangle, bool) {
		return tri.Translate(vec(0, 0, 1)), true
	})
	tri, ok := Chain(up, up, NoOpPreprocessor{}).Preprocess(diagonalTriangle(), Frame{})

	require.True(t, ok)
	assert.Equal(t, vec(5, 5, 2), tri.B)
}

func TestClipToFrameKeepsResult(t *testing.T) {
	frame := NewFrame(vec(3, -2, 1), 16, 12)
	triangles := randomMesh(5, 200, 14)

	plain := Voxelize(triangles, frame)
	clipped := Voxelize(triangles, frame, WithPreprocessor(ClipToFrame{}))

	assert.Equal(t, plain.Bitmap(), clipped.Bitmap())
}

func TestVoxelizeParallelMatchesSequential(t *testing.T) {
	frame := NewFrame(vec(0, 0, 0), 24, 24)
	triangles := randomMesh(6, 300, 10)

	sequential := Voxelize(triangles, frame)
	require.NotZero(t, sequential.ObstacleCount())

	for _, workers := range []int{2, 4, 0} {
		parallel := Voxelize(triangles, frame, WithWorkers(workers))
		assert.Equal(t, sequential.Bitmap(), parallel.Bitmap(), "workers=%d", workers)
	}
}
