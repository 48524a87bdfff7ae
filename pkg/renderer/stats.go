package renderer

import (
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width, Height      int
	RowsRendered       int           // Rows traced in this run
	RowsRecovered      int           // Rows taken from a checkpoint
	TotalSamples       int64         // Camera rays traced in this run
	Workers            int           // Worker goroutines used
	CheckpointFailures int           // Checkpoint writes that failed
	Duration           time.Duration // Wall time of the render
}

// TotalPixels returns the number of pixels in the image
func (s RenderStats) TotalPixels() int {
	return s.Width * s.Height
}

// SamplesPerSecond returns the ray throughput of this run
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}

// AverageLuminance returns the mean Rec. 709 luminance of an RGB byte buffer in [0,1]
func AverageLuminance(pixels []byte) float64 {
	if len(pixels) < 3 {
		return 0
	}
	var total float64
	n := len(pixels) / 3
	for i := 0; i < n; i++ {
		r := float64(pixels[3*i]) / 255
		g := float64(pixels[3*i+1]) / 255
		b := float64(pixels[3*i+2]) / 255
		total += 0.2126*r + 0.7152*g + 0.0722*b
	}
	return total / float64(n)
}
