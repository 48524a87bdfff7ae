package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that forwards records to a render's console channel.
// Records are dropped when the channel is full.
type ConsoleHandler struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
}

// NewConsoleLogger creates a logger for a specific render that feeds consoleChan
func NewConsoleLogger(renderID string, consoleChan chan<- ConsoleMessage) *slog.Logger {
	return slog.New(&ConsoleHandler{renderID: renderID, consoleChan: consoleChan})
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (h *ConsoleHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	record.Attrs(write)

	if h.consoleChan == nil {
		return nil
	}
	select {
	case h.consoleChan <- ConsoleMessage{RenderID: h.renderID, Message: b.String(), Timestamp: record.Time, Level: levelName(record.Level)}:
	default:
	}
	return nil
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConsoleHandler{
		renderID:    h.renderID,
		consoleChan: h.consoleChan,
		attrs:       append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup is a no-op; console lines are flat
func (h *ConsoleHandler) WithGroup(string) slog.Handler {
	return h
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
