package voxel

// Progress receives the share of processed triangles after every triangle.
type Progress interface {
	UpdateProgress(percent float32)
}

// Starter is implemented by progress sinks that want to know when a scan
// begins.
type Starter interface {
	Starting()
}

// Finisher is implemented by progress sinks that want to know when the grid
// is complete.
type Finisher interface {
	Finished()
}

// ProgressFunc adapts a plain function to Progress.
type ProgressFunc func(percent float32)

func (f ProgressFunc) UpdateProgress(percent float32) {
	f(percent)
}

type noProgress struct{}

func (noProgress) UpdateProgress(float32) {}

// percentOf returns processed*100/total, exactly 100 for the last triangle.
func percentOf(processed, total int) float32 {
	if processed >= total {
		return 100
	}
	return float32(processed) * 100 / float32(total)
}
