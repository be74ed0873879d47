package voxel

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// Option configures Voxelize.
type Option func(*options)

type options struct {
	progress     Progress
	preprocessor Preprocessor
	workers      int
}

// WithProgress reports progress once per triangle, in input order.
func WithProgress(progress Progress) Option {
	return func(o *options) {
		if progress != nil {
			o.progress = progress
		}
	}
}

// WithPreprocessor runs p on every triangle before it is scanned.
func WithPreprocessor(p Preprocessor) Option {
	return func(o *options) {
		if p != nil {
			o.preprocessor = p
		}
	}
}

// WithWorkers scans triangles on n goroutines. n <= 0 uses one worker per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		o.workers = n
	}
}

// Voxelize converts triangles to an occupancy grid placed by frame.
//
// Every triangle is scanned independently into an obstacle list and the
// lists are written to the grid in a single pass afterwards.
func Voxelize(triangles []geometry.Triangle, frame Frame, opts ...Option) *Grid {
	o := options{
		progress:     noProgress{},
		preprocessor: NoOpPreprocessor{},
		workers:      1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if s, ok := o.progress.(Starter); ok {
		s.Starting()
	}

	var obstacles [][]math32.Vector3u
	if o.workers > 1 && len(triangles) > 1 {
		obstacles = o.scanParallel(triangles, frame)
	} else {
		obstacles = o.scanSequential(triangles, frame)
	}

	grid := NewGridWithFrame(frame)
	for _, list := range obstacles {
		for _, local := range list {
			grid.SetObstacle(local.X, local.Y, local.Z)
		}
	}

	if f, ok := o.progress.(Finisher); ok {
		f.Finished()
	}
	return grid
}

func (o *options) scan(triangle geometry.Triangle, frame Frame) []math32.Vector3u {
	triangle, ok := o.preprocessor.Preprocess(triangle, frame)
	if !ok {
		return nil
	}
	return FindObstacles(triangle, frame)
}

func (o *options) scanSequential(triangles []geometry.Triangle, frame Frame) [][]math32.Vector3u {
	obstacles := make([][]math32.Vector3u, len(triangles))
	for i := range triangles {
		obstacles[i] = o.scan(triangles[i], frame)
		o.progress.UpdateProgress(percentOf(i+1, len(triangles)))
	}
	return obstacles
}

// scanParallel stripes triangles across workers. Completed indices are
// collected here and progress advances over the completed prefix, so the
// sink still sees one call per triangle in input order.
func (o *options) scanParallel(triangles []geometry.Triangle, frame Frame) [][]math32.Vector3u {
	total := len(triangles)
	workers := math32.Min(o.workers, total)
	obstacles := make([][]math32.Vector3u, total)
	completed := make(chan int, workers*4)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < total; i += workers {
				obstacles[i] = o.scan(triangles[i], frame)
				completed <- i
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(completed)
	}()

	done := make([]bool, total)
	next := 0
	for i := range completed {
		done[i] = true
		for next < total && done[next] {
			next++
			o.progress.UpdateProgress(percentOf(next, total))
		}
	}
	return obstacles
}
