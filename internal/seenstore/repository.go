package seenstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
)

// chunkSize bounds how many rows one statement touches, keeping the bind
// parameter count under SQLite's per-statement limit.
const chunkSize = 400

// Repository handles database operations for per-source seen items.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new seen-item repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FilterNew returns the item IDs not yet recorded for the source, preserving
// input order. Duplicate inputs are returned once.
func (r *Repository) FilterNew(ctx context.Context, sourceID string, itemIDs []string) ([]string, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(itemIDs))
	for start := 0; start < len(itemIDs); start += chunkSize {
		end := min(start+chunkSize, len(itemIDs))

		query, args, err := sqlx.In(
			`SELECT item_id FROM seen_items WHERE source_id = ? AND item_id IN (?)`,
			sourceID, itemIDs[start:end],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build seen query: %w", err)
		}

		var found []string
		if selectErr := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); selectErr != nil {
			return nil, fmt.Errorf("failed to select seen items: %w", selectErr)
		}
		for _, id := range found {
			seen[id] = struct{}{}
		}
	}

	fresh := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, id)
	}

	return fresh, nil
}

// MarkSeen records item IDs for the source. Already-recorded IDs are ignored.
func (r *Repository) MarkSeen(ctx context.Context, sourceID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seen transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(itemIDs); start += chunkSize {
		end := min(start+chunkSize, len(itemIDs))
		chunk := itemIDs[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*2)
		for _, id := range chunk {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, sourceID, id)
		}

		query := `INSERT OR IGNORE INTO seen_items (source_id, item_id) VALUES ` +
			strings.Join(placeholders, ", ")
		if _, execErr := tx.ExecContext(ctx, query, args...); execErr != nil {
			return fmt.Errorf("failed to insert seen items: %w", execErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit seen items: %w", commitErr)
	}

	return nil
}

// EnforceCapacity deletes the oldest recorded items beyond capacity for the
// source, returning how many were removed. A capacity of zero or less
// disables pruning.
func (r *Repository) EnforceCapacity(ctx context.Context, sourceID string, capacity int) (int64, error) {
	if capacity <= 0 {
		return 0, nil
	}

	query := `
		DELETE FROM seen_items
		WHERE source_id = ?
		  AND id NOT IN (
			SELECT id FROM seen_items WHERE source_id = ? ORDER BY id DESC LIMIT ?
		  )
	`

	result, err := r.db.ExecContext(ctx, query, sourceID, sourceID, capacity)
	if err != nil {
		return 0, fmt.Errorf("failed to prune seen items: %w", err)
	}

	removed, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return 0, fmt.Errorf("failed to count pruned items: %w", affectedErr)
	}

	return removed, nil
}

// CountBySource returns how many items are recorded for the source.
func (r *Repository) CountBySource(ctx context.Context, sourceID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM seen_items WHERE source_id = ?`, sourceID); err != nil {
		return 0, fmt.Errorf("failed to count seen items: %w", err)
	}

	return count, nil
}

// ListRecent returns the most recently recorded items for the source,
// newest first.
func (r *Repository) ListRecent(ctx context.Context, sourceID string, limit int) ([]domain.SeenItem, error) {
	query := `
		SELECT id, source_id, item_id, seen_at
		FROM seen_items
		WHERE source_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	var items []domain.SeenItem
	if err := r.db.SelectContext(ctx, &items, query, sourceID, limit); err != nil {
		return nil, fmt.Errorf("failed to list seen items: %w", err)
	}

	return items, nil
}

// DeleteBySource removes every recorded item for the source, returning how
// many rows were deleted.
func (r *Repository) DeleteBySource(ctx context.Context, sourceID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM seen_items WHERE source_id = ?`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete seen items: %w", err)
	}

	removed, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return 0, fmt.Errorf("failed to count deleted items: %w", affectedErr)
	}

	return removed, nil
}
