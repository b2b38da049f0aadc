package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/checkpoint"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/seenstore"
)

// SeenTracker decides which listed candidates are new and records run progress.
// FilterNew preserves candidate order. Commit must keep rate-limited items
// eligible for the next run.
type SeenTracker interface {
	FilterNew(ctx context.Context, candidates []domain.Candidate) ([]domain.Candidate, error)
	Commit(ctx context.Context, listed, rateLimited []domain.Candidate) error
}

// WatermarkTracker tracks progress for sources with ordered identifiers
// through a scalar checkpoint.
type WatermarkTracker struct {
	store *checkpoint.Store
}

var _ SeenTracker = (*WatermarkTracker)(nil)

// NewWatermarkTracker creates a tracker backed by the given checkpoint store.
func NewWatermarkTracker(store *checkpoint.Store) *WatermarkTracker {
	return &WatermarkTracker{store: store}
}

// FilterNew keeps candidates whose sequence lies above the stored watermark.
func (t *WatermarkTracker) FilterNew(_ context.Context, candidates []domain.Candidate) ([]domain.Candidate, error) {
	mark := t.store.Load()

	fresh := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Seq > mark {
			fresh = append(fresh, c)
		}
	}
	return fresh, nil
}

// Commit advances the watermark to the greatest listed sequence strictly below
// the smallest rate-limited one, so rate-limited items are listed again on the
// next run. The watermark never moves backwards and an unchanged watermark is
// not rewritten.
func (t *WatermarkTracker) Commit(_ context.Context, listed, rateLimited []domain.Candidate) error {
	barrier := int64(math.MaxInt64)
	for _, c := range rateLimited {
		if c.Seq < barrier {
			barrier = c.Seq
		}
	}

	mark := t.store.Load()
	advance := mark
	for _, c := range listed {
		if c.Seq > advance && c.Seq < barrier {
			advance = c.Seq
		}
	}

	if advance <= mark {
		return nil
	}
	if err := t.store.Save(advance); err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}
	return nil
}

// SeenSetTracker tracks progress for sources with unordered identifiers
// through the bounded seen-item store.
type SeenSetTracker struct {
	repo     *seenstore.Repository
	sourceID string
	capacity int
}

var _ SeenTracker = (*SeenSetTracker)(nil)

// NewSeenSetTracker creates a tracker over the sourceID rows of the seen
// store. Capacity bounds the per-source row count, oldest rows evicted first;
// zero or negative disables eviction.
func NewSeenSetTracker(repo *seenstore.Repository, sourceID string, capacity int) *SeenSetTracker {
	return &SeenSetTracker{
		repo:     repo,
		sourceID: sourceID,
		capacity: capacity,
	}
}

// FilterNew drops candidates already present in the seen store.
func (t *SeenSetTracker) FilterNew(ctx context.Context, candidates []domain.Candidate) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	freshIDs, err := t.repo.FilterNew(ctx, t.sourceID, ids)
	if err != nil {
		return nil, fmt.Errorf("filter seen items: %w", err)
	}

	keep := make(map[string]bool, len(freshIDs))
	for _, id := range freshIDs {
		keep[id] = true
	}

	fresh := make([]domain.Candidate, 0, len(freshIDs))
	for _, c := range candidates {
		if keep[c.ID] {
			fresh = append(fresh, c)
			delete(keep, c.ID)
		}
	}
	return fresh, nil
}

// Commit marks every listed item except the rate-limited ones as seen, then
// evicts the oldest rows beyond capacity.
func (t *SeenSetTracker) Commit(ctx context.Context, listed, rateLimited []domain.Candidate) error {
	skip := make(map[string]bool, len(rateLimited))
	for _, c := range rateLimited {
		skip[c.ID] = true
	}

	ids := make([]string, 0, len(listed))
	for _, c := range listed {
		if !skip[c.ID] {
			ids = append(ids, c.ID)
		}
	}

	if err := t.repo.MarkSeen(ctx, t.sourceID, ids); err != nil {
		return fmt.Errorf("mark items seen: %w", err)
	}
	if _, err := t.repo.EnforceCapacity(ctx, t.sourceID, t.capacity); err != nil {
		return fmt.Errorf("evict seen items: %w", err)
	}
	return nil
}
