// Package sources manages the monitored content origins: the source
// capability itself, the registry of configured sources, the sources-file
// loader, and the shared HTTP transport with the source error taxonomy.
package sources

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
)

// Source is one monitored origin of candidate items.
type Source interface {
	// ID returns the stable identifier used for checkpoints and records.
	ID() string

	// ListCandidates returns up to limit of the newest item identifiers.
	ListCandidates(ctx context.Context, limit int) ([]domain.Candidate, error)

	// FetchBody retrieves the text content of one listed candidate.
	FetchBody(ctx context.Context, candidate domain.Candidate) ([]byte, error)

	// Ordered reports whether candidate Seq values are totally ordered,
	// letting callers track progress with a scalar watermark instead of a
	// seen-item set.
	Ordered() bool
}

// Registry holds the active sources in registration order.
type Registry struct {
	order []string
	byID  map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Source)}
}

// Register adds a source. Registering a duplicate ID is an error.
func (r *Registry) Register(source Source) error {
	id := source.ID()
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("source %s already registered", id)
	}

	r.byID[id] = source
	r.order = append(r.order, id)

	return nil
}

// Get returns the source with the given ID.
func (r *Registry) Get(id string) (Source, error) {
	source, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}

	return source, nil
}

// All returns the sources in registration order.
func (r *Registry) All() []Source {
	all := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.byID[id])
	}

	return all
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.order)
}
