package domain

import (
	"sort"
	"time"
)

// ListingChange is an append-only, evidence-backed transition of one field.
// Once written it is immutable.
type ListingChange struct {
	// ID is the unique identifier for the change.
	ID string `json:"listing_change_id"`

	// ListingID is the listing the change applies to.
	ListingID string `json:"listing_id"`

	// FieldPath names the field that changed.
	FieldPath string `json:"field_path"`

	// OldValue is the value in effect immediately before ChangedAt.
	OldValue Value `json:"old_value"`

	// NewValue is the value from ChangedAt onward.
	NewValue Value `json:"new_value"`

	// ChangedAt orders the change within the listing's history.
	ChangedAt time.Time `json:"changed_at"`

	// SnapshotID is the snapshot the new value was extracted from, if known.
	SnapshotID string `json:"snapshot_id,omitempty"`

	// Evidence supports NewValue, in citation priority order.
	Evidence []Evidence `json:"evidence"`

	// Confidence is the extraction confidence of NewValue.
	Confidence float64 `json:"confidence,omitempty"`

	// Sequence is the insertion order assigned by the change store.
	// It breaks ChangedAt ties.
	Sequence int64 `json:"-"`
}

// Field returns the field value this change establishes.
func (c *ListingChange) Field() Field {
	f := NewField(c.NewValue, append([]Evidence(nil), c.Evidence...))
	f.Confidence = c.Confidence
	return f
}

// SortChanges orders changes by ChangedAt ascending, ties broken by
// insertion order.
func SortChanges(changes []ListingChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		if !changes[i].ChangedAt.Equal(changes[j].ChangedAt) {
			return changes[i].ChangedAt.Before(changes[j].ChangedAt)
		}
		return changes[i].Sequence < changes[j].Sequence
	})
}

// Replay folds changes onto base in chronological order, last write per
// field path winning. Only changes at or before asOf are applied; a zero
// asOf applies them all. The base listing is not modified.
func Replay(base *Listing, changes []ListingChange, asOf time.Time) Listing {
	ordered := append([]ListingChange(nil), changes...)
	SortChanges(ordered)

	out := base.Clone()
	for i := range ordered {
		c := &ordered[i]
		if c.ListingID != base.ID {
			continue
		}
		if !asOf.IsZero() && c.ChangedAt.After(asOf) {
			break
		}
		out.Fields[c.FieldPath] = c.Field()
		if c.SnapshotID != "" {
			out.SnapshotID = c.SnapshotID
		}
		out.Revision++
		out.UpdatedAt = c.ChangedAt
	}
	return out
}

// ValueAt returns the value of fieldPath in effect at t according to
// changes, or null when nothing was recorded by then.
func ValueAt(changes []ListingChange, fieldPath string, t time.Time) Value {
	ordered := append([]ListingChange(nil), changes...)
	SortChanges(ordered)

	v := NullValue()
	for i := range ordered {
		if ordered[i].ChangedAt.After(t) {
			break
		}
		if ordered[i].FieldPath == fieldPath {
			v = ordered[i].NewValue
		}
	}
	return v
}
