package domain

import "time"

// Candidate represents one item discovered during a source listing.
type Candidate struct {
	// ID is the source-scoped identifier of the item (paste key, message ID).
	ID string `db:"item_id" json:"id"`
	// Seq is the numeric order of ID for sources with ordered identifiers.
	// Zero for sources whose identifiers carry no intrinsic order.
	Seq int64 `db:"seq" json:"seq,omitempty"`
	// URL is the canonical item location when known at listing time.
	URL string `db:"url" json:"url,omitempty"`
}

// SeenItem is a row in the seen-item store.
type SeenItem struct {
	RowID    int64     `db:"id"        json:"-"`
	SourceID string    `db:"source_id" json:"source_id"`
	ItemID   string    `db:"item_id"   json:"item_id"`
	SeenAt   time.Time `db:"seen_at"   json:"seen_at"`
}
