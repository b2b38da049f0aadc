// Package checkpoint persists the per-source high-water mark between runs.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Logger is the narrow logging interface the store needs.
type Logger interface {
	Warn(msg string, fields ...any)
}

// Store reads and writes a single int64 watermark as decimal text.
// Load never fails: a missing or unparsable file yields the zero baseline, so
// a damaged checkpoint can only cause re-processing, never a crash.
type Store struct {
	path   string
	logger Logger
}

// NewStore creates a store for the watermark file at path.
func NewStore(path string, logger Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load returns the stored watermark, or 0 when the file is absent or corrupt.
func (s *Store) Load() int64 {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Checkpoint unreadable, starting from baseline",
				"path", s.path,
				"error", err,
			)
		}
		return 0
	}

	value, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		s.logger.Warn("Checkpoint corrupt, starting from baseline",
			"path", s.path,
			"error", err,
		)
		return 0
	}

	return value
}

// Save atomically writes the watermark via a same-directory temp file and
// rename, fsyncing before the swap. Retrying a completed Save is a no-op at
// the content level.
func (s *Store) Save(value int64) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	// The temp file must live in the target directory for the rename to be atomic.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.WriteString(strconv.FormatInt(value, 10) + "\n"); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("swap checkpoint: %w", err)
	}

	return nil
}

// Reset removes the checkpoint file. A missing file is not an error.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}
