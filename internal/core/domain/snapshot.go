package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Snapshot is an immutable capture of a source page at a point in time.
// Two snapshots with identical text share a ContentHash.
type Snapshot struct {
	// ID is the unique identifier for the snapshot.
	ID string `json:"snapshot_id"`

	// SourceID optionally identifies the acquisition source.
	SourceID string `json:"source_id,omitempty"`

	// URL is the captured location.
	URL string `json:"url"`

	// ContentHash is the hex SHA-256 digest of Text.
	ContentHash string `json:"content_hash"`

	// Text is the raw captured content evidence excerpts are drawn from.
	Text string `json:"text"`

	// HTML is the optional markup the text was rendered from.
	HTML string `json:"html,omitempty"`

	// CapturedAt is when the page was captured.
	CapturedAt time.Time `json:"captured_at"`
}

// HashText returns the hex SHA-256 digest of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Intact reports whether the stored hash still matches the text.
func (s *Snapshot) Intact() bool {
	return s.ContentHash == HashText(s.Text)
}
