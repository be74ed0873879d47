package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher rebuilds the grid of every mesh file written to a directory.
type Watcher struct {
	Dir string
	// Template supplies every setting except Input and Output.
	Template BuildConfig
	// OutputDir receives <stem>.dat files, DEFAULT_OUTPUT_FOLDER when empty.
	OutputDir string
	Logger    *slog.Logger
	// Initial builds the meshes already in Dir before watching.
	Initial bool

	// OnBuilt is called after each successful build.
	OnBuilt func(input, output string)
}

// IsMeshFile reports whether path has an extension mesh.Load understands.
func IsMeshFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".json":
		return true
	}
	return false
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	if w.Initial {
		if err := w.BuildExisting(logger); err != nil {
			logger.Warn("initial build failed", "error", err)
		}
	}
	logger.Info("watching for meshes", "dir", w.Dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Write == fsnotify.Write:
				if IsMeshFile(event.Name) {
					w.rebuild(event.Name, logger)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// BuildExisting builds every mesh file currently in Dir, stopping at the
// first failure.
func (w *Watcher) BuildExisting(logger *slog.Logger) error {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.Dir, err)
	}
	var configs []BuildConfig
	for _, entry := range entries {
		if !entry.IsDir() && IsMeshFile(entry.Name()) {
			configs = append(configs, w.config(filepath.Join(w.Dir, entry.Name())))
		}
	}
	if err := BatchBuild(configs, logger); err != nil {
		return err
	}
	if w.OnBuilt != nil {
		for _, config := range configs {
			w.OnBuilt(config.Input, config.Output)
		}
	}
	return nil
}

func (w *Watcher) config(input string) BuildConfig {
	config := w.Template
	config.Input = input
	config.Primitive = ""
	outputDir := w.OutputDir
	if outputDir == "" {
		outputDir = DEFAULT_OUTPUT_FOLDER
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	config.Output = filepath.Join(outputDir, stem+".dat")
	return config
}

func (w *Watcher) rebuild(input string, logger *slog.Logger) {
	config := w.config(input)
	grid, output, err := BuildAndSave(config, NewLogProgress(logger, input), logger)
	if err != nil {
		// partially written files trigger a write event again once complete
		logger.Warn("rebuild failed", "mesh", input, "error", err)
		return
	}
	logger.Info("grid saved", "mesh", input, "output", output, "obstacles", grid.ObstacleCount())
	if w.OnBuilt != nil {
		w.OnBuilt(input, output)
	}
}
