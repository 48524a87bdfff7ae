package renderer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/integrator"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// Config contains rendering configuration
type Config struct {
	Width           int // Image width; height follows from the scene aspect ratio
	SamplesPerPixel int // Number of rays per pixel
	MaxBounces      int // Maximum ray bounce depth
	Workers         int // Worker goroutines, 0 for one per CPU
	Seed            int64

	// OutputPath names the final image; the checkpoint is written next to it.
	// Empty disables checkpointing.
	OutputPath     string
	RecoverPath    string // Checkpoint to resume from
	RecoverCorrupt bool   // Keep the readable part of a damaged checkpoint

	Quiet          bool
	BarWidth       int
	ProgressOutput io.Writer // Defaults to stderr

	// OnRow, if set, is called from the coordinator after each rendered row
	OnRow func(done, total int)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           600,
		SamplesPerPixel: 100,
		MaxBounces:      50,
		BarWidth:        60,
	}
}

// progressWindow is the number of recent rows the time estimate averages over
const progressWindow = 20

// Raytracer renders a scene row by row
type Raytracer struct {
	scene  *scene.Scene
	config Config
	logger *slog.Logger
	width  int
	height int
}

// Result is a finished render
type Result struct {
	Pixels         []byte // Row-major RGB, row 0 at the top
	Width, Height  int
	Stats          RenderStats
	CheckpointPath string
	RecoveredPath  string // checkpoint the run resumed from, if any
}

// NewRaytracer creates a new raytracer
func NewRaytracer(s *scene.Scene, config Config, logger *slog.Logger) (*Raytracer, error) {
	if config.Width <= 0 {
		return nil, fmt.Errorf("image width must be positive, got %d", config.Width)
	}
	if config.SamplesPerPixel <= 0 {
		return nil, fmt.Errorf("samples per pixel must be positive, got %d", config.SamplesPerPixel)
	}
	if config.ProgressOutput == nil {
		config.ProgressOutput = os.Stderr
	}
	return &Raytracer{
		scene:  s,
		config: config,
		logger: core.LoggerOrNop(logger),
		width:  config.Width,
		height: ImageHeight(config.Width, s.AspectRatio),
	}, nil
}

// ImageHeight derives the image height from a width and an aspect ratio
func ImageHeight(width int, aspectRatio float64) int {
	if aspectRatio <= 0 {
		return width
	}
	return max(int(math.Round(float64(width)/aspectRatio)), 1)
}

// Size returns the image dimensions
func (rt *Raytracer) Size() (width, height int) {
	return rt.width, rt.height
}

// Render traces every row not recovered from a checkpoint and assembles the image
func (rt *Raytracer) Render() (*Result, error) {
	start := time.Now()

	recovered, err := rt.recoverRows()
	if err != nil {
		return nil, err
	}

	pixels := make([]byte, rt.width*rt.height*3)
	stride := rt.width * 3
	var todo []int
	for row := 0; row < rt.height; row++ {
		if recovered != nil && recovered[row] != nil {
			copy(pixels[row*stride:], recovered[row])
			continue
		}
		todo = append(todo, row)
	}

	stats := RenderStats{
		Width:         rt.width,
		Height:        rt.height,
		RowsRecovered: rt.height - len(todo),
	}

	var checkpoint *Checkpoint
	if rt.config.OutputPath != "" {
		checkpoint, err = CreateCheckpoint(rt.config.OutputPath, rt.width, rt.height)
		if err != nil {
			return nil, err
		}
		for row := range recovered {
			if recovered[row] != nil {
				stats.CheckpointFailures += rt.writeRow(checkpoint, row, recovered[row])
			}
		}
	}

	rt.logger.Info("Rendering",
		"width", rt.width, "height", rt.height,
		"samples", rt.config.SamplesPerPixel, "rows", len(todo), "recovered", stats.RowsRecovered)

	rows := NewRowRenderer(rt.scene.Camera,
		integrator.NewPathTracingIntegrator(rt.scene.World, rt.scene.Sky, rt.config.MaxBounces),
		rt.width, rt.height, rt.config.SamplesPerPixel)
	pool := NewWorkerPool(rt.config.Workers, rt.config.Seed, rows.RenderRow)
	stats.Workers = pool.GetNumWorkers()

	var bar *ProgressBar
	if !rt.config.Quiet && len(todo) > 0 {
		bar = NewProgressBar(rt.config.ProgressOutput, rt.config.BarWidth, "Rendering",
			DefaultProgressChars, progressWindow, len(todo))
	}

	var g errgroup.Group
	g.Go(func() error {
		return pool.Run(todo)
	})
	g.Go(func() error {
		for result := range pool.Results() {
			copy(pixels[result.Row*stride:], result.Pixels)
			stats.RowsRendered++
			if checkpoint != nil {
				stats.CheckpointFailures += rt.writeRow(checkpoint, result.Row, result.Pixels)
			}
			if rt.config.OnRow != nil {
				rt.config.OnRow(stats.RowsRendered, len(todo))
			}
			if bar != nil {
				if err := bar.Update(); err != nil {
					rt.logger.Warn("Progress bar disabled", "error", err)
					bar = nil
				}
			}
		}
		if bar != nil {
			bar.Clear()
		}
		return nil
	})
	err = g.Wait()

	if checkpoint != nil {
		if cerr := checkpoint.Close(); cerr != nil {
			rt.logger.Warn("Failed to close checkpoint", "path", checkpoint.Path(), "error", cerr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	stats.TotalSamples = int64(stats.RowsRendered) * int64(rt.width) * int64(rt.config.SamplesPerPixel)
	stats.Duration = time.Since(start)

	result := &Result{Pixels: pixels, Width: rt.width, Height: rt.height, Stats: stats}
	if checkpoint != nil {
		result.CheckpointPath = checkpoint.Path()
	}
	if rt.config.RecoverPath != "" {
		result.RecoveredPath = rt.config.RecoverPath
	}
	return result, nil
}

// recoverRows reads the configured checkpoint; nil means nothing to recover
func (rt *Raytracer) recoverRows() ([][]byte, error) {
	if rt.config.RecoverPath == "" {
		return nil, nil
	}

	file, err := os.Open(rt.config.RecoverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer file.Close()

	rows, err := ReadCheckpoint(file, rt.width, rt.height, rt.config.RecoverCorrupt)
	if err != nil {
		if rt.config.RecoverCorrupt && (errors.Is(err, ErrDimensionMismatch) || errors.Is(err, ErrCorruptCheckpoint)) {
			rt.logger.Warn("Ignoring unusable checkpoint", "path", rt.config.RecoverPath, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to recover %s: %w", rt.config.RecoverPath, err)
	}

	found := 0
	for _, row := range rows {
		if row != nil {
			found++
		}
	}
	rt.logger.Info("Recovered checkpoint", "path", rt.config.RecoverPath, "rows", found)
	return rows, nil
}

// writeRow appends a row to the checkpoint, returning 1 on failure
func (rt *Raytracer) writeRow(checkpoint *Checkpoint, row int, pixels []byte) int {
	if err := checkpoint.WriteRow(row, pixels); err != nil {
		rt.logger.Warn("Checkpoint write failed", "row", row, "error", err)
		return 1
	}
	return 0
}

// Image converts the pixel buffer to an RGBA image
func (r *Result) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i := 0; i < r.Width*r.Height; i++ {
		img.Pix[4*i] = r.Pixels[3*i]
		img.Pix[4*i+1] = r.Pixels[3*i+1]
		img.Pix[4*i+2] = r.Pixels[3*i+2]
		img.Pix[4*i+3] = 255
	}
	return img
}

// RemoveCheckpoint deletes the checkpoint, and the one the run resumed from, once the
// image is safely saved
func (r *Result) RemoveCheckpoint() error {
	for _, path := range []string{r.CheckpointPath, r.RecoveredPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove checkpoint: %w", err)
		}
	}
	return nil
}
