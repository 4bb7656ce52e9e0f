package domain

import "fmt"

// Field is a value attached to a Listing or a ListingChange together with
// the evidence that supports it. Evidence order is citation priority.
//
// MissingEvidence is true if and only if Evidence is empty.
type Field struct {
	Value           Value      `json:"value"`
	Evidence        []Evidence `json:"evidence"`
	MissingEvidence bool       `json:"missing_evidence"`

	// Confidence is the extraction confidence in [0, 1]. It is informative
	// only and never compared.
	Confidence float64 `json:"confidence,omitempty"`
}

// NewField builds a field whose missing-evidence flag matches its evidence.
func NewField(value Value, evidence []Evidence) Field {
	return Field{Value: value, Evidence: evidence}.Normalize()
}

// Normalize recomputes MissingEvidence and guarantees a non-nil evidence
// slice so the field always encodes as an array.
func (f Field) Normalize() Field {
	if f.Evidence == nil {
		f.Evidence = []Evidence{}
	}
	f.MissingEvidence = len(f.Evidence) == 0
	return f
}

// Verified reports whether at least one citation backs the value.
func (f Field) Verified() bool {
	return len(f.Evidence) > 0
}

// CheckInvariant returns an error when the missing-evidence flag disagrees
// with the evidence set.
func (f Field) CheckInvariant() error {
	if f.MissingEvidence != (len(f.Evidence) == 0) {
		return fmt.Errorf("missing_evidence=%t with %d citations: %w",
			f.MissingEvidence, len(f.Evidence), ErrInvalidArgument)
	}
	return nil
}

// EvidenceIDs returns the cited evidence ids in priority order.
func (f Field) EvidenceIDs() []string {
	ids := make([]string, len(f.Evidence))
	for i := range f.Evidence {
		ids[i] = f.Evidence[i].ID
	}
	return ids
}

// Clone copies the field, including its evidence slice.
func (f Field) Clone() Field {
	out := f
	out.Evidence = append([]Evidence(nil), f.Evidence...)
	return out.Normalize()
}
