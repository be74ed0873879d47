package builder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// StdOutProgress prints progress on a single, rewritten terminal line.
type StdOutProgress struct {
	Out io.Writer
}

func NewStdOutProgress() *StdOutProgress {
	return &StdOutProgress{Out: os.Stdout}
}

func (p *StdOutProgress) Starting() {
	fmt.Fprintln(p.Out, "Starting to convert obj file")
}

func (p *StdOutProgress) UpdateProgress(percent float32) {
	fmt.Fprintf(p.Out, "Current progress: %.2f%%\r", percent)
}

func (p *StdOutProgress) Finished() {
	fmt.Fprintln(p.Out, "\nFinished converting obj to grid")
}

// LogProgress logs progress through slog, at most once per whole percent.
type LogProgress struct {
	logger  *slog.Logger
	name    string
	last    int
	started time.Time
}

func NewLogProgress(logger *slog.Logger, name string) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgress{logger: logger, name: name, last: -1}
}

func (p *LogProgress) Starting() {
	p.started = time.Now()
	p.last = -1
	p.logger.Info("voxelization started", "mesh", p.name)
}

func (p *LogProgress) UpdateProgress(percent float32) {
	step := int(math32.Floor(percent))
	if step <= p.last {
		return
	}
	p.last = step
	p.logger.Debug("voxelization progress", "mesh", p.name, "percent", step)
}

func (p *LogProgress) Finished() {
	p.logger.Info("voxelization finished", "mesh", p.name, "elapsed", time.Since(p.started))
}
