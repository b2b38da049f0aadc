package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchRecord status constants.
const (
	MatchStatusPending   = "pending"
	MatchStatusReviewed  = "reviewed"
	MatchStatusDismissed = "dismissed"
)

// MatchRecord is one match appended to the JSONL output file.
// Records are append-only: once written they are never mutated. Review state
// transitions (pending, reviewed, dismissed) belong to downstream consumers.
type MatchRecord struct {
	// Identity
	ID     string `json:"id"`
	Source string `json:"source"`
	ItemID string `json:"item_id"`
	URL    string `json:"url,omitempty"`

	// Match detail
	Context       string   `json:"context"`
	KeywordsFound []string `json:"keywords_found,omitempty"`

	// Review state
	DiscoveredAt time.Time `json:"discovered_at"`
	Status       string    `json:"status"`
}

// NewMatchRecord builds a pending match record with a fresh ID and a
// second-precision UTC discovery timestamp.
func NewMatchRecord(source, itemID, url, context string, keywords []string) MatchRecord {
	return MatchRecord{
		ID:            uuid.NewString(),
		Source:        source,
		ItemID:        itemID,
		URL:           url,
		Context:       context,
		KeywordsFound: keywords,
		DiscoveredAt:  time.Now().UTC().Truncate(time.Second),
		Status:        MatchStatusPending,
	}
}
