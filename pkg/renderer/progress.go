package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultProgressChars fills a bar cell in three steps
const DefaultProgressChars = " -=≡"

// ProgressBar draws a single-line text progress bar with an estimated time remaining.
// The estimate averages the intervals between the most recent updates.
type ProgressBar struct {
	w       io.Writer
	width   int
	label   string
	chars   []string
	window  int
	total   int
	updates []time.Time
	now     func() time.Time
}

// NewProgressBar creates a bar of roughly width columns that completes after total updates.
// window is the number of recent updates used for the time estimate.
func NewProgressBar(w io.Writer, width int, label, chars string, window, total int) *ProgressBar {
	if utf8.RuneCountInString(chars) < 2 {
		chars = DefaultProgressChars
	}
	split := make([]string, 0, len(chars))
	for _, r := range chars {
		split = append(split, string(r))
	}
	return &ProgressBar{
		w:      w,
		width:  width,
		label:  label,
		chars:  split,
		window: max(window, 2),
		total:  max(total, 1),
		now:    time.Now,
	}
}

// Update records one completed unit of work and redraws the bar
func (p *ProgressBar) Update() error {
	p.updates = append(p.updates, p.now())

	length := max(p.width-len(p.label)-15, 1)
	multiplier := len(p.chars) - 1
	count := min(len(p.updates), p.total)
	progress := multiplier * count * length / p.total
	remainder := multiplier*length - progress

	var bar strings.Builder
	bar.WriteString(strings.Repeat(p.chars[multiplier], progress/multiplier))
	if partial := progress % multiplier; partial != 0 {
		bar.WriteString(p.chars[partial])
	}
	bar.WriteString(strings.Repeat(p.chars[0], remainder/multiplier))

	_, err := fmt.Fprintf(p.w, "\r%s: [%s] %s ", p.label, bar.String(), formatETA(p.remaining()))
	if err != nil {
		return fmt.Errorf("writing progress bar: %w", err)
	}
	return nil
}

// Clear blanks the line the bar was drawn on
func (p *ProgressBar) Clear() error {
	_, err := fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width+len(p.label)+12))
	if err != nil {
		return fmt.Errorf("clearing progress bar: %w", err)
	}
	return nil
}

// remaining estimates the time left from the average of the recent update intervals
func (p *ProgressBar) remaining() time.Duration {
	recent := p.updates[max(len(p.updates)-p.window, 0):]
	if len(recent) < 2 {
		return 0
	}
	average := recent[len(recent)-1].Sub(recent[0]) / time.Duration(len(recent)-1)
	left := p.total - len(p.updates)
	if left <= 0 {
		return 0
	}
	return average * time.Duration(left)
}

func formatETA(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%2d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
