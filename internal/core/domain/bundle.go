package domain

import (
	"fmt"
	"strings"
	"time"
)

// BundleSchemaVersion is the only bundle format understood.
const BundleSchemaVersion = "v1"

// Bundle is a batch of extraction output: captured pages, the excerpts cited
// from them, the listings they describe and the field changes observed.
//
// Entries refer to each other by bundle-local keys. Keys never reach the
// ledger; records receive their own ids when imported.
type Bundle struct {
	SchemaVersion string
	Snapshots     []BundleSnapshot
	Listings      []BundleListing
	Changes       []BundleChange
	SearchSpecs   []SearchSpec
}

// BundleSnapshot is a page capture with the citations drawn from it.
type BundleSnapshot struct {
	Key        string
	URL        string
	SourceID   string
	Text       string
	HTML       string
	CapturedAt time.Time
	Citations  []BundleCitation
}

// BundleCitation is an excerpt cited from the enclosing snapshot.
type BundleCitation struct {
	Key     string
	Excerpt string
}

// BundleListing registers a listing. Without an ID the listing gets one
// derived from its key, so importing the same bundle twice finds it again.
type BundleListing struct {
	Key          string
	ID           string
	Title        string
	Neighborhood string
	Snapshot     string
}

// BundleChange sets one field of a listing.
type BundleChange struct {
	ID string

	// Listing is a listing key from the same bundle or a ledger listing id.
	Listing string

	Field string
	Value Value

	// OldValue, when set, is checked against the value in effect.
	OldValue *Value

	// Citations are citation keys, in priority order.
	Citations []string

	// Snapshot is an optional snapshot key.
	Snapshot string

	ChangedAt  time.Time
	Confidence float64
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	// Snapshots counts snapshots resolved, including identical captures
	// that were already stored.
	Snapshots   int `json:"snapshots"`
	Evidence    int `json:"evidence"`
	Listings    int `json:"listings"`
	Changes     int `json:"changes"`
	SearchSpecs int `json:"search_specs"`

	// Skipped counts listings, changes and specs already in the ledger.
	Skipped int `json:"skipped"`

	// ListingIDs maps bundle listing keys to ledger ids.
	ListingIDs map[string]string `json:"listing_ids"`
}

// Validate checks versions, required fields and that every key reference
// resolves within the bundle.
func (b *Bundle) Validate() error {
	if b.SchemaVersion != "" && b.SchemaVersion != BundleSchemaVersion {
		return fmt.Errorf("bundle schema_version %q (want %s): %w",
			b.SchemaVersion, BundleSchemaVersion, ErrInvalidArgument)
	}

	snapshots := make(map[string]struct{}, len(b.Snapshots))
	citations := make(map[string]struct{})
	for i, s := range b.Snapshots {
		if s.Key == "" {
			return fmt.Errorf("snapshots[%d]: key is required: %w", i, ErrInvalidArgument)
		}
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("snapshot %s: url is required: %w", s.Key, ErrInvalidArgument)
		}
		if _, dup := snapshots[s.Key]; dup {
			return fmt.Errorf("snapshot key %q is used twice: %w", s.Key, ErrInvalidArgument)
		}
		snapshots[s.Key] = struct{}{}
		for j, c := range s.Citations {
			if c.Key == "" || c.Excerpt == "" {
				return fmt.Errorf("snapshot %s citations[%d]: key and excerpt are required: %w",
					s.Key, j, ErrInvalidArgument)
			}
			if _, dup := citations[c.Key]; dup {
				return fmt.Errorf("citation key %q is used twice: %w", c.Key, ErrInvalidArgument)
			}
			citations[c.Key] = struct{}{}
		}
	}

	listings := make(map[string]struct{}, len(b.Listings))
	for i, l := range b.Listings {
		if l.Key == "" {
			return fmt.Errorf("listings[%d]: key is required: %w", i, ErrInvalidArgument)
		}
		if _, dup := listings[l.Key]; dup {
			return fmt.Errorf("listing key %q is used twice: %w", l.Key, ErrInvalidArgument)
		}
		if l.Snapshot != "" {
			if _, ok := snapshots[l.Snapshot]; !ok {
				return fmt.Errorf("listing %s: unknown snapshot %q: %w", l.Key, l.Snapshot, ErrInvalidArgument)
			}
		}
		listings[l.Key] = struct{}{}
	}

	for i, c := range b.Changes {
		if c.Listing == "" || strings.TrimSpace(c.Field) == "" {
			return fmt.Errorf("changes[%d]: listing and field are required: %w", i, ErrInvalidArgument)
		}
		if c.Snapshot != "" {
			if _, ok := snapshots[c.Snapshot]; !ok {
				return fmt.Errorf("changes[%d]: unknown snapshot %q: %w", i, c.Snapshot, ErrInvalidArgument)
			}
		}
		for _, key := range c.Citations {
			if _, ok := citations[key]; !ok {
				return fmt.Errorf("changes[%d]: unknown citation %q: %w", i, key, ErrInvalidArgument)
			}
		}
	}

	for i := range b.SearchSpecs {
		spec := b.SearchSpecs[i]
		spec.Normalize()
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("search_specs[%d]: %w", i, err)
		}
	}
	return nil
}
