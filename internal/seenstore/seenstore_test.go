package seenstore_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/seenstore"
)

func newTestRepo(t *testing.T) *seenstore.Repository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seen.db")
	db, err := seenstore.NewConnection(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return seenstore.NewRepository(db)
}

func markSeen(t *testing.T, repo *seenstore.Repository, sourceID string, itemIDs ...string) {
	t.Helper()

	if err := repo.MarkSeen(context.Background(), sourceID, itemIDs); err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}
}

func TestRepository_FilterNew_AllNew(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	fresh, err := repo.FilterNew(ctx, "pastebin-archive", []string{"a1", "b2", "c3"})
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("expected 3 new items, got %d", len(fresh))
	}
	for i, want := range []string{"a1", "b2", "c3"} {
		if fresh[i] != want {
			t.Errorf("expected fresh[%d]=%s, got %s", i, want, fresh[i])
		}
	}
}

func TestRepository_FilterNew_SkipsRecorded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	markSeen(t, repo, "pastebin-archive", "a1", "b2")

	fresh, err := repo.FilterNew(ctx, "pastebin-archive", []string{"a1", "b2", "c3", "d4"})
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected 2 new items, got %d: %v", len(fresh), fresh)
	}
	if fresh[0] != "c3" || fresh[1] != "d4" {
		t.Errorf("expected [c3 d4] in listing order, got %v", fresh)
	}
}

func TestRepository_FilterNew_EmptyInput(t *testing.T) {
	repo := newTestRepo(t)

	fresh, err := repo.FilterNew(context.Background(), "pastebin-archive", nil)
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 0 {
		t.Errorf("expected no items for empty input, got %v", fresh)
	}
}

func TestRepository_FilterNew_CollapsesDuplicateInput(t *testing.T) {
	repo := newTestRepo(t)

	fresh, err := repo.FilterNew(context.Background(), "pastebin-archive", []string{"a1", "a1", "b2"})
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected duplicates collapsed to 2 items, got %v", fresh)
	}
	if fresh[0] != "a1" || fresh[1] != "b2" {
		t.Errorf("expected [a1 b2], got %v", fresh)
	}
}

func TestRepository_FilterNew_ChunksLargeInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Enough candidates to span several IN-clause chunks.
	candidates := make([]string, 900)
	recorded := make([]string, 0, 450)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("item-%04d", i)
		if i%2 == 0 {
			recorded = append(recorded, candidates[i])
		}
	}
	markSeen(t, repo, "pastebin-archive", recorded...)

	fresh, err := repo.FilterNew(ctx, "pastebin-archive", candidates)
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 450 {
		t.Fatalf("expected 450 new items, got %d", len(fresh))
	}
	if fresh[0] != "item-0001" || fresh[449] != "item-0899" {
		t.Errorf("expected odd-numbered items in order, got first=%s last=%s", fresh[0], fresh[449])
	}
}

func TestRepository_MarkSeen_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	markSeen(t, repo, "pastebin-archive", "a1", "b2")
	markSeen(t, repo, "pastebin-archive", "a1", "b2")

	count, err := repo.CountBySource(ctx, "pastebin-archive")
	if err != nil {
		t.Fatalf("CountBySource() error = %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 recorded items after re-marking, got %d", count)
	}
}

func TestRepository_SourcesAreIsolated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	markSeen(t, repo, "pastebin-archive", "a1")

	fresh, err := repo.FilterNew(ctx, "telegram-monitor", []string{"a1"})
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("expected item recorded under another source to stay new, got %v", fresh)
	}
}

func TestRepository_EnforceCapacity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items := make([]string, 10)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}
	markSeen(t, repo, "pastebin-archive", items...)

	removed, err := repo.EnforceCapacity(ctx, "pastebin-archive", 6)
	if err != nil {
		t.Fatalf("EnforceCapacity() error = %v", err)
	}
	if removed != 4 {
		t.Errorf("expected 4 pruned items, got %d", removed)
	}

	// The oldest entries go first; the newest six stay recorded.
	fresh, err := repo.FilterNew(ctx, "pastebin-archive", items)
	if err != nil {
		t.Fatalf("FilterNew() error = %v", err)
	}
	if len(fresh) != 4 {
		t.Fatalf("expected the 4 oldest items to be new again, got %v", fresh)
	}
	if fresh[0] != "item-00" || fresh[3] != "item-03" {
		t.Errorf("expected items 00..03 pruned, got %v", fresh)
	}
}

func TestRepository_EnforceCapacity_Disabled(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	markSeen(t, repo, "pastebin-archive", "a1", "b2")

	removed, err := repo.EnforceCapacity(ctx, "pastebin-archive", 0)
	if err != nil {
		t.Fatalf("EnforceCapacity() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("expected pruning disabled at capacity 0, removed %d", removed)
	}
}

func TestRepository_ListRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	markSeen(t, repo, "pastebin-archive", "a1")
	markSeen(t, repo, "pastebin-archive", "b2")
	markSeen(t, repo, "pastebin-archive", "c3")

	items, err := repo.ListRecent(ctx, "pastebin-archive", 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ItemID != "c3" || items[1].ItemID != "b2" {
		t.Errorf("expected newest first [c3 b2], got [%s %s]", items[0].ItemID, items[1].ItemID)
	}
	if items[0].SourceID != "pastebin-archive" {
		t.Errorf("expected source_id=pastebin-archive, got %s", items[0].SourceID)
	}
	if items[0].SeenAt.IsZero() {
		t.Error("expected seen_at to be populated")
	}
}

func TestRepository_DeleteBySource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	markSeen(t, repo, "pastebin-archive", "a1", "b2")
	markSeen(t, repo, "telegram-monitor", "m1")

	removed, err := repo.DeleteBySource(ctx, "pastebin-archive")
	if err != nil {
		t.Fatalf("DeleteBySource() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 deleted rows, got %d", removed)
	}

	count, err := repo.CountBySource(ctx, "pastebin-archive")
	if err != nil {
		t.Fatalf("CountBySource() error = %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 items after delete, got %d", count)
	}

	other, err := repo.CountBySource(ctx, "telegram-monitor")
	if err != nil {
		t.Fatalf("CountBySource() error = %v", err)
	}
	if other != 1 {
		t.Errorf("expected other source untouched, got %d items", other)
	}
}
