// Package logtail keeps the most recent server log lines in memory so staff
// can read them without shell access.
package logtail

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"time"

	"cottonwood-backend/internal/models"
)

// Log levels inferred from message text
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// DefaultCapacity is the number of lines retained
const DefaultCapacity = 1000

var stdPrefixRe = regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(\.\d+)? `)

// Buffer is a fixed-size ring of log lines. It implements io.Writer so it can
// be teed from the standard logger.
type Buffer struct {
	mu      sync.Mutex
	lines   []models.LogLine
	next    int
	full    bool
	partial []byte
	now     func() time.Time
}

// New creates a buffer holding up to capacity lines
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{lines: make([]models.LogLine, capacity), now: time.Now}
}

// Write splits p into lines and records each complete one
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := append(b.partial, p...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		b.append(string(data[:i]))
		data = data[i+1:]
	}
	b.partial = append([]byte(nil), data...)
	return len(p), nil
}

func (b *Buffer) append(raw string) {
	msg := strings.TrimSpace(stdPrefixRe.ReplaceAllString(raw, ""))
	if msg == "" {
		return
	}
	b.lines[b.next] = models.LogLine{
		Timestamp: b.now().UTC().Format(time.RFC3339),
		Level:     Level(msg),
		Message:   msg,
	}
	b.next = (b.next + 1) % len(b.lines)
	if b.next == 0 {
		b.full = true
	}
}

// Tail returns up to limit of the most recent lines, oldest first
func (b *Buffer) Tail(limit int) []models.LogLine {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.next
	if b.full {
		count = len(b.lines)
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	out := make([]models.LogLine, 0, limit)
	start := b.next - limit
	for i := 0; i < limit; i++ {
		idx := (start + i + len(b.lines)) % len(b.lines)
		out = append(out, b.lines[idx])
	}
	return out
}

// Level infers a severity from the message wording
func Level(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "failed"),
		strings.Contains(lower, "panic"), strings.Contains(lower, "fatal"):
		return LevelError
	case strings.Contains(lower, "warn"), strings.Contains(lower, "skipping"),
		strings.Contains(lower, "timed out"), strings.Contains(lower, "unavailable"):
		return LevelWarn
	default:
		return LevelInfo
	}
}
