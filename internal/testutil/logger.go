package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LogBuffer collects the JSON entries written by a CaptureLogger
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// CaptureLogger returns a debug-level JSON logger writing into a LogBuffer
func CaptureLogger() (*slog.Logger, *LogBuffer) {
	logs := &LogBuffer{}
	return slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})), logs
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Entries decodes every captured entry in order
func (b *LogBuffer) Entries() []map[string]any {
	var entries []map[string]any
	for line := range bytes.Lines([]byte(b.String())) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Messages returns the message of every captured entry
func (b *LogBuffer) Messages() []string {
	var msgs []string
	for _, entry := range b.Entries() {
		if msg, ok := entry[slog.MessageKey].(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
