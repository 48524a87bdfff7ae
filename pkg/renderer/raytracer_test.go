package renderer

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// groundScene is a small sphere resting on a large ground sphere under a white sky
func groundScene(t *testing.T) *scene.Scene {
	t.Helper()
	grey := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	world, err := geometry.NewBVH([]core.Hittable{
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, grey),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, grey),
	}, 0, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewBVH failed: %v", err)
	}

	return &scene.Scene{
		Camera: geometry.NewCamera(geometry.CameraConfig{
			LookAt:        core.NewVec3(0, 0, -1),
			Up:            core.NewVec3(0, 1, 0),
			VFov:          90,
			AspectRatio:   1,
			FocusDistance: 1,
		}),
		World:       world,
		Sky:         core.SolidSky(core.NewVec3(1, 1, 1)),
		AspectRatio: 1,
	}
}

func quietConfig(width int) Config {
	config := DefaultConfig()
	config.Width = width
	config.SamplesPerPixel = 2
	config.MaxBounces = 4
	config.Quiet = true
	config.Seed = 7
	return config
}

func render(t *testing.T, s *scene.Scene, config Config) *Result {
	t.Helper()
	rt, err := NewRaytracer(s, config, nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	result, err := rt.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return result
}

func TestRender_TwoByTwo(t *testing.T) {
	config := quietConfig(2)
	config.SamplesPerPixel = 1
	config.MaxBounces = 1
	result := render(t, groundScene(t), config)

	if result.Width != 2 || result.Height != 2 || len(result.Pixels) != 12 {
		t.Fatalf("Expected a 2x2 RGB buffer, got %dx%d with %d bytes", result.Width, result.Height, len(result.Pixels))
	}
	// The top row looks above the horizon and sees the white sky
	for i, b := range result.Pixels[:6] {
		if b != 254 {
			t.Errorf("Top row byte %d: expected 254, got %d", i, b)
		}
	}
	// With one bounce a surface hit gathers nothing, so every byte is sky or black
	for i, b := range result.Pixels {
		if b != 0 && b != 254 {
			t.Errorf("Byte %d: expected 0 or 254, got %d", i, b)
		}
	}
	if result.Stats.RowsRendered != 2 || result.Stats.TotalSamples != 4 {
		t.Errorf("Unexpected stats %+v", result.Stats)
	}
}

func TestRender_DeterministicAcrossWorkerCounts(t *testing.T) {
	s := groundScene(t)
	config := quietConfig(12)
	config.Workers = 1
	single := render(t, s, config)
	config.Workers = 5
	many := render(t, s, config)

	if !bytes.Equal(single.Pixels, many.Pixels) {
		t.Error("Rendering should not depend on the number of workers")
	}
	if many.Stats.Workers != 5 {
		t.Errorf("Expected 5 workers, got %d", many.Stats.Workers)
	}
}

func TestRender_CheckpointAndRecovery(t *testing.T) {
	s := groundScene(t)
	output := filepath.Join(t.TempDir(), "out.png")
	config := quietConfig(8)
	config.OutputPath = output
	full := render(t, s, config)

	if full.CheckpointPath != output+".0.part" {
		t.Fatalf("Unexpected checkpoint path %q", full.CheckpointPath)
	}
	file, err := os.Open(full.CheckpointPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	rows, err := ReadCheckpoint(file, 8, 8, false)
	file.Close()
	if err != nil {
		t.Fatalf("ReadCheckpoint failed: %v", err)
	}
	for row := range rows {
		if !bytes.Equal(rows[row], full.Pixels[row*24:(row+1)*24]) {
			t.Errorf("Checkpoint row %d does not match the image", row)
		}
	}

	// Keep the even rows and finish the rest
	partial := filepath.Join(t.TempDir(), "partial.part")
	var buf bytes.Buffer
	cp, err := NewCheckpoint(&buf, 8, 8)
	if err != nil {
		t.Fatalf("NewCheckpoint failed: %v", err)
	}
	for row := 6; row >= 0; row -= 2 {
		if err := cp.WriteRow(row, rows[row]); err != nil {
			t.Fatalf("WriteRow failed: %v", err)
		}
	}
	if err := os.WriteFile(partial, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	config.RecoverPath = partial
	resumed := render(t, s, config)
	if !bytes.Equal(resumed.Pixels, full.Pixels) {
		t.Error("A resumed render should match the uninterrupted render")
	}
	if resumed.Stats.RowsRecovered != 4 || resumed.Stats.RowsRendered != 4 {
		t.Errorf("Unexpected stats %+v", resumed.Stats)
	}
	if resumed.CheckpointPath != output+".1.part" {
		t.Errorf("Expected a fresh checkpoint, got %q", resumed.CheckpointPath)
	}

	// The new checkpoint holds recovered and rendered rows alike
	data, err := os.ReadFile(resumed.CheckpointPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	rewritten, err := ReadCheckpoint(bytes.NewReader(data), 8, 8, false)
	if err != nil {
		t.Fatalf("ReadCheckpoint failed: %v", err)
	}
	for row := range rewritten {
		if rewritten[row] == nil {
			t.Errorf("Row %d missing from the new checkpoint", row)
		}
	}

	if err := resumed.RemoveCheckpoint(); err != nil {
		t.Fatalf("RemoveCheckpoint failed: %v", err)
	}
	for _, path := range []string{resumed.CheckpointPath, partial} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected %s to be removed, got %v", filepath.Base(path), err)
		}
	}
}

func TestRender_FullyRecovered(t *testing.T) {
	s := groundScene(t)
	config := quietConfig(4)
	full := render(t, s, config)

	var buf bytes.Buffer
	cp, _ := NewCheckpoint(&buf, 4, 4)
	for row := 0; row < 4; row++ {
		cp.WriteRow(row, full.Pixels[row*12:(row+1)*12])
	}
	path := filepath.Join(t.TempDir(), "done.part")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	config.RecoverPath = path
	config.Quiet = false
	var progress bytes.Buffer
	config.ProgressOutput = &progress
	resumed := render(t, s, config)
	if resumed.Stats.RowsRendered != 0 || !bytes.Equal(resumed.Pixels, full.Pixels) {
		t.Errorf("Expected a pure replay, got %+v", resumed.Stats)
	}
	if progress.Len() != 0 {
		t.Errorf("Nothing to render should draw no progress, got %q", progress.String())
	}
}

func TestRender_RecoveryErrors(t *testing.T) {
	s := groundScene(t)
	dir := t.TempDir()
	mismatched := filepath.Join(dir, "mismatched.part")
	os.WriteFile(mismatched, []byte("5 5\n"), 0o644)
	corrupt := filepath.Join(dir, "corrupt.part")
	os.WriteFile(corrupt, []byte("4 4\nL0 \x01"), 0o644)

	tests := []struct {
		name           string
		path           string
		recoverCorrupt bool
		expected       error
	}{
		{"dimension mismatch", mismatched, false, ErrDimensionMismatch},
		{"corrupt record", corrupt, false, ErrCorruptCheckpoint},
		{"missing file", filepath.Join(dir, "nope.part"), true, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := quietConfig(4)
			config.RecoverPath = tt.path
			config.RecoverCorrupt = tt.recoverCorrupt
			rt, err := NewRaytracer(s, config, nil)
			if err != nil {
				t.Fatalf("NewRaytracer failed: %v", err)
			}
			if _, err := rt.Render(); !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}

	// Best effort renders everything that could not be recovered
	for _, path := range []string{mismatched, corrupt} {
		config := quietConfig(4)
		config.RecoverPath = path
		config.RecoverCorrupt = true
		result := render(t, s, config)
		if result.Stats.RowsRecovered != 0 || result.Stats.RowsRendered != 4 {
			t.Errorf("%s: unexpected stats %+v", filepath.Base(path), result.Stats)
		}
	}
}

// brokenWriter accepts the header and fails afterwards
type brokenWriter struct{ writes int }

func (w *brokenWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, io.ErrClosedPipe
	}
	return len(p), nil
}

func TestRaytracer_CheckpointWriteFailureIsCounted(t *testing.T) {
	rt, err := NewRaytracer(groundScene(t), quietConfig(2), nil)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	cp, err := NewCheckpoint(&brokenWriter{}, 2, 2)
	if err != nil {
		t.Fatalf("NewCheckpoint failed: %v", err)
	}
	if failed := rt.writeRow(cp, 0, make([]byte, 6)); failed != 1 {
		t.Errorf("Expected the failure to be counted, got %d", failed)
	}
}

func TestRender_ProgressOutput(t *testing.T) {
	config := quietConfig(4)
	config.Quiet = false
	var progress bytes.Buffer
	config.ProgressOutput = &progress
	render(t, groundScene(t), config)

	out := progress.String()
	if !strings.Contains(out, "\rRendering: [") {
		t.Errorf("Expected a progress bar, got %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("Expected the bar to be cleared at the end")
	}
}

func TestNewRaytracer_InvalidConfig(t *testing.T) {
	s := groundScene(t)
	for _, config := range []Config{{Width: 0, SamplesPerPixel: 1}, {Width: 4, SamplesPerPixel: 0}} {
		if _, err := NewRaytracer(s, config, nil); err == nil {
			t.Errorf("Expected an error for %+v", config)
		}
	}
}

func TestImageHeight(t *testing.T) {
	tests := []struct {
		width    int
		aspect   float64
		expected int
	}{
		{600, 1, 600},
		{600, 16.0 / 9.0, 338},
		{400, 1.5, 267},
		{1, 3, 1},
		{10, 0, 10},
	}
	for _, tt := range tests {
		if got := ImageHeight(tt.width, tt.aspect); got != tt.expected {
			t.Errorf("ImageHeight(%d, %f) = %d, want %d", tt.width, tt.aspect, got, tt.expected)
		}
	}
}

func TestToByte(t *testing.T) {
	tests := []struct {
		in       float64
		expected byte
	}{
		{math.NaN(), 0},
		{-1, 0},
		{0, 0},
		{0.5, 127},
		{1, 254},
		{7, 254},
	}
	for _, tt := range tests {
		if got := ToByte(tt.in); got != tt.expected {
			t.Errorf("ToByte(%v) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}

func TestResult_Image(t *testing.T) {
	result := &Result{Width: 2, Height: 1, Pixels: []byte{1, 2, 3, 4, 5, 6}}
	img := result.Image()
	if c := img.RGBAAt(1, 0); c.R != 4 || c.G != 5 || c.B != 6 || c.A != 255 {
		t.Errorf("Unexpected pixel %v", c)
	}
}

func TestAverageLuminance(t *testing.T) {
	if got := AverageLuminance([]byte{255, 255, 255, 0, 0, 0}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected 0.5, got %f", got)
	}
	if got := AverageLuminance(nil); got != 0 {
		t.Errorf("Expected 0 for no pixels, got %f", got)
	}
}

func TestRender_OnRowReportsEveryRow(t *testing.T) {
	config := quietConfig(6)
	var calls, lastDone, lastTotal int
	config.OnRow = func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}
	render(t, groundScene(t), config)

	if calls != 6 || lastDone != 6 || lastTotal != 6 {
		t.Errorf("Expected 6 calls ending at 6/6, got %d calls ending at %d/%d", calls, lastDone, lastTotal)
	}
}
