package mcp

import (
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// Tool outputs flatten domain types into plain JSON scalars so the inferred
// output schemas stay simple.

// EvidenceOutput is one citation.
type EvidenceOutput struct {
	EvidenceID string `json:"evidence_id"`
	SnapshotID string `json:"snapshot_id"`
	Kind       string `json:"kind"`
	Excerpt    string `json:"excerpt"`
	StartChar  *int   `json:"start_char,omitempty"`
	EndChar    *int   `json:"end_char,omitempty"`
}

// FieldOutput is one listing field with its provenance.
type FieldOutput struct {
	Name            string           `json:"name"`
	Value           any              `json:"value"`
	Confidence      float64          `json:"confidence,omitempty"`
	MissingEvidence bool             `json:"missing_evidence"`
	Evidence        []EvidenceOutput `json:"evidence"`
}

// ListingOutput is a listing projection.
type ListingOutput struct {
	ListingID    string        `json:"listing_id"`
	Title        string        `json:"title"`
	Neighborhood string        `json:"neighborhood,omitempty"`
	SnapshotID   string        `json:"snapshot_id,omitempty"`
	Revision     int64         `json:"revision"`
	Fields       []FieldOutput `json:"fields"`
}

// ChangeOutput is one history entry.
type ChangeOutput struct {
	ChangeID    string   `json:"listing_change_id"`
	FieldPath   string   `json:"field_path"`
	OldValue    any      `json:"old_value"`
	NewValue    any      `json:"new_value"`
	ChangedAt   string   `json:"changed_at"`
	SnapshotID  string   `json:"snapshot_id,omitempty"`
	EvidenceIDs []string `json:"evidence_ids"`
}

func evidenceOutput(ev *domain.Evidence) EvidenceOutput {
	out := EvidenceOutput{
		EvidenceID: ev.ID,
		SnapshotID: ev.SnapshotID,
		Kind:       string(ev.Kind),
		Excerpt:    ev.Excerpt,
	}
	if ev.Locator != nil {
		start, end := ev.Locator.StartChar, ev.Locator.EndChar
		out.StartChar, out.EndChar = &start, &end
	}
	return out
}

func fieldOutput(name string, f domain.Field) FieldOutput {
	f = f.Normalize()
	out := FieldOutput{
		Name:            name,
		Value:           f.Value.Interface(),
		Confidence:      f.Confidence,
		MissingEvidence: f.MissingEvidence,
		Evidence:        make([]EvidenceOutput, len(f.Evidence)),
	}
	for i := range f.Evidence {
		out.Evidence[i] = evidenceOutput(&f.Evidence[i])
	}
	return out
}

func listingOutput(l *domain.Listing) ListingOutput {
	names := l.FieldNames()
	out := ListingOutput{
		ListingID:    l.ID,
		Title:        l.Title,
		Neighborhood: l.Neighborhood,
		SnapshotID:   l.SnapshotID,
		Revision:     l.Revision,
		Fields:       make([]FieldOutput, len(names)),
	}
	for i, name := range names {
		out.Fields[i] = fieldOutput(name, l.Fields[name])
	}
	return out
}

func changeOutput(c *domain.ListingChange) ChangeOutput {
	ids := make([]string, len(c.Evidence))
	for i := range c.Evidence {
		ids[i] = c.Evidence[i].ID
	}
	return ChangeOutput{
		ChangeID:    c.ID,
		FieldPath:   c.FieldPath,
		OldValue:    c.OldValue.Interface(),
		NewValue:    c.NewValue.Interface(),
		ChangedAt:   c.ChangedAt.UTC().Format(time.RFC3339Nano),
		SnapshotID:  c.SnapshotID,
		EvidenceIDs: ids,
	}
}
