package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// EvidenceKind describes how an excerpt relates to its snapshot.
type EvidenceKind string

// Evidence kinds.
const (
	// EvidenceKindTextSpan is an exact character span of the snapshot text.
	EvidenceKindTextSpan EvidenceKind = "text_span"

	// EvidenceKindSummary is a paraphrase that cannot be located verbatim.
	EvidenceKindSummary EvidenceKind = "summary"
)

// IsValid returns true if the kind is recognised.
func (k EvidenceKind) IsValid() bool {
	switch k {
	case EvidenceKindTextSpan, EvidenceKindSummary:
		return true
	default:
		return false
	}
}

// SourceFormatText is the only snapshot format spans are resolved against.
const SourceFormatText = "text"

// Locator pins a text span inside a snapshot. Offsets count characters
// (runes), end exclusive.
type Locator struct {
	StartChar    int    `json:"start_char"`
	EndChar      int    `json:"end_char"`
	TextHash     string `json:"text_hash"`
	SourceFormat string `json:"source_format"`
}

// Evidence is a permanent citation of a snapshot excerpt.
// It is never mutated or deleted once created.
type Evidence struct {
	// ID is the unique identifier for the evidence.
	ID string `json:"evidence_id"`

	// SnapshotID is the owning snapshot. Required.
	SnapshotID string `json:"snapshot_id"`

	// Kind says whether Excerpt is a verbatim span or a summary.
	Kind EvidenceKind `json:"kind"`

	// Locator is set for text spans.
	Locator *Locator `json:"locator,omitempty"`

	// Excerpt is the cited text.
	Excerpt string `json:"excerpt"`

	// CreatedAt is when the citation was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Evidence issue codes reported by CheckEvidence.
const (
	IssueSnapshotMismatch = "snapshot_id_mismatch"
	IssueUnsupportedKind  = "unsupported_kind"
	IssueInvalidLocator   = "invalid_locator"
	IssueSpanOutOfBounds  = "span_out_of_bounds"
	IssueExcerptMismatch  = "excerpt_mismatch"
	IssueTextHashMismatch = "text_hash_mismatch"
)

// EvidenceIssue is one problem found when re-resolving a citation.
type EvidenceIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LocateExcerpt finds the first occurrence of excerpt in text and returns
// a locator for it.
func LocateExcerpt(text, excerpt string) (*Locator, bool) {
	if excerpt == "" {
		return nil, false
	}
	idx := strings.Index(text, excerpt)
	if idx < 0 {
		return nil, false
	}
	start := utf8.RuneCountInString(text[:idx])
	return &Locator{
		StartChar:    start,
		EndChar:      start + utf8.RuneCountInString(excerpt),
		TextHash:     HashText(excerpt),
		SourceFormat: SourceFormatText,
	}, true
}

// ResolveSpan returns the characters [start, end) of text.
func ResolveSpan(text string, start, end int) (string, bool) {
	runes := []rune(text)
	if start < 0 || end < 0 || start >= end || end > len(runes) {
		return "", false
	}
	return string(runes[start:end]), true
}

// CheckEvidence re-resolves ev against its snapshot. An empty result means
// the citation is consistent. Summaries are only checked for ownership.
func CheckEvidence(ev *Evidence, snap *Snapshot) []EvidenceIssue {
	var issues []EvidenceIssue
	if ev.SnapshotID != snap.ID {
		return append(issues, EvidenceIssue{
			Code:    IssueSnapshotMismatch,
			Message: "evidence snapshot_id does not match snapshot",
		})
	}

	switch ev.Kind {
	case EvidenceKindSummary:
		return issues
	case EvidenceKindTextSpan:
	default:
		return append(issues, EvidenceIssue{Code: IssueUnsupportedKind, Message: "unsupported evidence kind"})
	}

	if ev.Locator == nil || ev.Locator.SourceFormat != SourceFormatText {
		return append(issues, EvidenceIssue{
			Code:    IssueInvalidLocator,
			Message: "text_span requires a text locator",
		})
	}

	span, ok := ResolveSpan(snap.Text, ev.Locator.StartChar, ev.Locator.EndChar)
	if !ok {
		return append(issues, EvidenceIssue{
			Code:    IssueSpanOutOfBounds,
			Message: "text_span locator out of bounds",
		})
	}
	if span != ev.Excerpt {
		issues = append(issues, EvidenceIssue{
			Code:    IssueExcerptMismatch,
			Message: "excerpt does not match resolved span",
		})
	}
	if ev.Locator.TextHash != "" && HashText(span) != ev.Locator.TextHash {
		issues = append(issues, EvidenceIssue{
			Code:    IssueTextHashMismatch,
			Message: "text_hash does not match resolved span",
		})
	}
	return issues
}
