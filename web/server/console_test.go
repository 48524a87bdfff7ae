package server

import (
	"testing"
	"time"
)

func TestConsoleLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewConsoleLogger("test-render-123", messageChan)

	logger.Info("Rendering", "rows", 12)

	select {
	case msg := <-messageChan:
		if msg.Message != "Rendering rows=12" {
			t.Errorf("Expected message 'Rendering rows=12', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if msg.RenderID != "test-render-123" {
			t.Errorf("Expected render ID 'test-render-123', got '%s'", msg.RenderID)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestConsoleLogger_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewConsoleLogger("levels", messageChan)

	logger.Debug("hidden")
	logger.Warn("careful")
	logger.Error("broken")

	for _, expected := range []string{"warning", "error"} {
		select {
		case msg := <-messageChan:
			if msg.Level != expected {
				t.Errorf("Expected level '%s', got '%s' (%s)", expected, msg.Level, msg.Message)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for console message")
		}
	}
	if len(messageChan) != 0 {
		t.Errorf("Debug messages should be filtered, %d left", len(messageChan))
	}
}

func TestConsoleLogger_WithAttrs(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewConsoleLogger("attrs", messageChan).With("scene", "cornell")

	logger.Info("Scene resolved", "objects", 8)

	msg := <-messageChan
	if msg.Message != "Scene resolved scene=cornell objects=8" {
		t.Errorf("Unexpected message '%s'", msg.Message)
	}
}

func TestConsoleLogger_FullChannelDoesNotBlock(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewConsoleLogger("full", messageChan)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			logger.Info("message")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logging blocked on a full channel")
	}
	if len(messageChan) != 1 {
		t.Errorf("Expected one buffered message, got %d", len(messageChan))
	}
}

func TestConsoleLogger_NilChannel(t *testing.T) {
	logger := NewConsoleLogger("nil", nil)
	logger.Info("nowhere to go")
}
