package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/df07/go-scene-raytracer/pkg/renderer"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "progress", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// ProgressUpdate is sent after each finished row
type ProgressUpdate struct {
	RowsDone  int   `json:"rowsDone"`
	TotalRows int   `json:"totalRows"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	TotalSamples     int64   `json:"totalSamples"`
	Workers          int     `json:"workers"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	AverageLuminance float64 `json:"averageLuminance"`
}

// CompleteUpdate carries the finished image
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// handleRender renders a scene and streams progress, console output and the final image via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEEvent(w, "error", errorData(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	s.logger.Info("Render requested", "id", renderID, "scene", req.Scene, "width", req.Width, "samples", req.Samples)

	// Rendering cannot be interrupted, so a disconnected client only stops the stream
	sseEventChan := make(chan SSEEvent, 100)
	go s.runRender(ctx, req, renderID, sseEventChan)
	s.writeSSEEvents(w, ctx, sseEventChan)
}

func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// runRender produces the events of one render and closes sseEventChan when done
func (s *Server) runRender(ctx context.Context, req *RenderRequest, renderID string, sseEventChan chan SSEEvent) {
	defer close(sseEventChan)
	startTime := time.Now()

	consoleChan := make(chan ConsoleMessage, 100)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	result, err := s.render(req, NewConsoleLogger(renderID, consoleChan), func(done, total int) {
		data, _ := json.Marshal(ProgressUpdate{
			RowsDone:  done,
			TotalRows: total,
			ElapsedMs: time.Since(startTime).Milliseconds(),
		})
		// Progress is best effort; drop updates rather than stall the render
		select {
		case sseEventChan <- SSEEvent{Type: "progress", Data: string(data)}:
		default:
		}
	})
	close(consoleChan)
	<-forwarded

	if err != nil {
		s.logger.Warn("Render failed", "id", renderID, "error", err)
		sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: errorData(err.Error())})
		return
	}

	imageData, err := imageToBase64PNG(result.Image())
	if err != nil {
		sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: errorData(err.Error())})
		return
	}
	data, err := json.Marshal(CompleteUpdate{
		ImageData: imageData,
		Stats: Stats{
			Width:            result.Width,
			Height:           result.Height,
			TotalSamples:     result.Stats.TotalSamples,
			Workers:          result.Stats.Workers,
			SamplesPerSecond: result.Stats.SamplesPerSecond(),
			AverageLuminance: renderer.AverageLuminance(result.Pixels),
		},
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})
	if err != nil {
		sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: errorData(err.Error())})
		return
	}
	s.logger.Info("Render complete", "id", renderID, "duration", result.Stats.Duration)
	sendEvent(ctx, sseEventChan, SSEEvent{Type: "complete", Data: string(data)})
}

// render builds the requested scene and renders it without checkpointing
func (s *Server) render(req *RenderRequest, logger *slog.Logger, onRow func(done, total int)) (*renderer.Result, error) {
	sceneObj, err := s.buildScene(req.Scene, req.Seed, logger)
	if err != nil {
		return nil, err
	}

	config := renderer.DefaultConfig()
	config.Width = req.Width
	config.SamplesPerPixel = req.Samples
	config.MaxBounces = req.Bounces
	config.Seed = req.Seed
	config.Quiet = true
	config.OnRow = onRow

	raytracer, err := renderer.NewRaytracer(sceneObj, config, logger)
	if err != nil {
		return nil, err
	}
	return raytracer.Render()
}

// writeSSEEvents writes events until the channel closes or the client goes away
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if err := s.sendSSEEvent(w, event.Type, event.Data); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards console messages as SSE events until consoleChan closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			s.logger.Warn("Error marshaling console message", "error", err)
			continue
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Channel full, skip message to avoid blocking
		}
	}
}

func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// sendEvent blocks until the event is queued or the client is gone
func sendEvent(ctx context.Context, sseEventChan chan SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
	}
}

func errorData(message string) string {
	data, _ := json.Marshal(map[string]string{"error": message})
	return string(data)
}

func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
