// Package sink appends match records to a JSONL output file.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
)

// Writer appends one JSON object per line to the output file. Appends are
// serialized and flushed to disk before returning, so a record Append accepted
// survives a crash. The file is opened append-only and never read back or
// rewritten; deduplication is the tracker's job, not the sink's.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	path    string
}

// NewWriter opens (creating if needed) the output file for appending.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)

	return &Writer{
		file:    file,
		encoder: encoder,
		path:    path,
	}, nil
}

// Append writes one record as a single JSON line and flushes it to disk
// before returning. Safe for concurrent use.
func (w *Writer) Append(record domain.MatchRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("append match record: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("flush match record: %w", err)
	}
	return nil
}

// Close closes the underlying file. Records appended before Close are already
// durable, so Close after a partial failure is safe.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// Path returns the output file location.
func (w *Writer) Path() string {
	return w.path
}
