package domain

import (
	"sort"
	"time"
)

// Attribute names resolvable on every listing without a field entry.
const (
	AttrNeighborhood = "neighborhood"
	AttrTitle        = "title"
)

// Listing is the current-value projection of a listing. Its field set is a
// cache over the listing's change history and is only ever mutated by
// applying a ListingChange.
type Listing struct {
	// ID is the unique identifier for the listing (UUID).
	ID string `json:"listing_id"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Neighborhood is the area the listing belongs to.
	Neighborhood string `json:"neighborhood"`

	// SnapshotID is the snapshot whose extraction produced this projection.
	SnapshotID string `json:"snapshot_id"`

	// RegisteredSnapshotID is the snapshot the listing was registered from.
	// It is the snapshot of the empty baseline that history replays onto.
	RegisteredSnapshotID string `json:"registered_snapshot_id,omitempty"`

	// Fields maps field names to their current values.
	Fields map[string]Field `json:"fields"`

	// Revision counts the changes folded into Fields.
	Revision int64 `json:"revision"`

	// CreatedAt is when the listing was registered.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the last change was applied.
	UpdatedAt time.Time `json:"updated_at"`
}

// Attribute resolves a name against the field set first and then against
// the listing's own attributes, which carry no evidence.
func (l *Listing) Attribute(name string) (Field, bool) {
	if f, ok := l.Fields[name]; ok {
		return f, true
	}
	switch name {
	case AttrNeighborhood:
		if l.Neighborhood != "" {
			return NewField(StringValue(l.Neighborhood), nil), true
		}
	case AttrTitle:
		if l.Title != "" {
			return NewField(StringValue(l.Title), nil), true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in lexical order.
func (l *Listing) FieldNames() []string {
	names := make([]string, 0, len(l.Fields))
	for name := range l.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone deep-copies the listing so callers cannot alias stored state.
func (l *Listing) Clone() Listing {
	out := *l
	out.Fields = make(map[string]Field, len(l.Fields))
	for name, f := range l.Fields {
		out.Fields[name] = f.Clone()
	}
	return out
}

// Baseline returns the listing as registered, before any change applied.
func (l *Listing) Baseline() Listing {
	return Listing{
		ID:                   l.ID,
		Title:                l.Title,
		Neighborhood:         l.Neighborhood,
		SnapshotID:           l.RegisteredSnapshotID,
		RegisteredSnapshotID: l.RegisteredSnapshotID,
		Fields:               map[string]Field{},
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.CreatedAt,
	}
}
