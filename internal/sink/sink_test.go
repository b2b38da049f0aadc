package sink_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sink"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestWriter_AppendWritesOneLinePerRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matches.jsonl")
	writer, err := sink.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	first := domain.NewMatchRecord("pastebin-archive", "abc123", "", "bitcoin wallet dump", []string{"bitcoin", "wallet"})
	second := domain.NewMatchRecord("telegram-monitor", "42", "http://example.onion/page", "visit http://example.onion/page now", nil)

	require.NoError(t, writer.Append(first))
	require.NoError(t, writer.Append(second))

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	var got domain.MatchRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	require.Equal(t, first, got)

	got = domain.MatchRecord{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
	require.Equal(t, second, got)
}

func TestWriter_AppendIsDurableBeforeClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matches.jsonl")
	writer, err := sink.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	record := domain.NewMatchRecord("pastebin-archive", "abc123", "", "eth giveaway", []string{"eth"})
	require.NoError(t, writer.Append(record))

	// The record must be readable while the writer is still open.
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"item_id":"abc123"`)
}

func TestWriter_ReopenAppendsAfterExistingRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matches.jsonl")

	writer, err := sink.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.Append(domain.NewMatchRecord("src", "one", "", "first", nil)))
	require.NoError(t, writer.Append(domain.NewMatchRecord("src", "two", "", "second", nil)))
	require.NoError(t, writer.Close())

	writer, err = sink.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.Append(domain.NewMatchRecord("src", "three", "", "third", nil)))
	require.NoError(t, writer.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"item_id":"one"`)
	require.Contains(t, lines[1], `"item_id":"two"`)
	require.Contains(t, lines[2], `"item_id":"three"`)
}

func TestWriter_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	const (
		goroutines    = 8
		perGoroutine  = 5
		expectedTotal = goroutines * perGoroutine
	)

	path := filepath.Join(t.TempDir(), "matches.jsonl")
	writer, err := sink.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := range perGoroutine {
				record := domain.NewMatchRecord("src", "item", "", "text", []string{"kw"})
				record.ID = fmt.Sprintf("worker-%d-%d", worker, j)
				if appendErr := writer.Append(record); appendErr != nil {
					t.Error(appendErr)
				}
			}
		}(i)
	}
	wg.Wait()

	lines := readLines(t, path)
	require.Len(t, lines, expectedTotal)

	// Every line must be a complete, standalone JSON object.
	ids := make(map[string]struct{}, expectedTotal)
	for _, line := range lines {
		var record domain.MatchRecord
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		ids[record.ID] = struct{}{}
	}
	require.Len(t, ids, expectedTotal)
}

func TestWriter_RecordEncoding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matches.jsonl")
	writer, err := sink.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	record := domain.MatchRecord{
		ID:           "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Source:       "telegram-monitor",
		ItemID:       "917",
		URL:          "http://abc123xyz.onion/page?x=1&y=2",
		Context:      "visit http://abc123xyz.onion/page?x=1&y=2 now",
		DiscoveredAt: time.Date(2026, 8, 23, 12, 30, 45, 0, time.UTC),
		Status:       domain.MatchStatusPending,
	}
	require.NoError(t, writer.Append(record))

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	line := lines[0]

	require.Contains(t, line, `"discovered_at":"2026-08-23T12:30:45Z"`)
	require.Contains(t, line, `"status":"pending"`)
	// Query separators stay readable; the encoder must not HTML-escape them.
	require.Contains(t, line, "?x=1&y=2")
	// Empty optional fields are omitted entirely.
	require.NotContains(t, line, "keywords_found")
}

func TestNewWriter_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "out", "matches.jsonl")
	writer, err := sink.NewWriter(path)
	require.NoError(t, err)
	defer writer.Close()

	require.NoError(t, writer.Append(domain.NewMatchRecord("src", "id", "", "text", nil)))
	require.FileExists(t, path)
	require.Equal(t, path, writer.Path())
}
