package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.BundleReader = (*Reader)(nil)

// Reader decodes YAML bundles. Unknown keys are rejected so that typos in
// hand-edited bundles do not silently drop data.
type Reader struct{}

// NewReader creates a new bundle reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadFile decodes the bundle stored at path.
func (r *Reader) ReadFile(ctx context.Context, path string) (*domain.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("bundle %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	b, err := r.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Read decodes a single YAML document from in.
func (r *Reader) Read(_ context.Context, in io.Reader) (*domain.Bundle, error) {
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)

	var doc bundleDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty bundle: %w", domain.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("decoding bundle: %v: %w", err, domain.ErrInvalidArgument)
	}
	return doc.toDomain(), nil
}

type bundleDoc struct {
	SchemaVersion string        `yaml:"schema_version"`
	Snapshots     []snapshotDoc `yaml:"snapshots"`
	Listings      []listingDoc  `yaml:"listings"`
	Changes       []changeDoc   `yaml:"changes"`
	SearchSpecs   []specDoc     `yaml:"search_specs"`
}

type snapshotDoc struct {
	Key        string        `yaml:"key"`
	URL        string        `yaml:"url"`
	SourceID   string        `yaml:"source_id"`
	Text       string        `yaml:"text"`
	HTML       string        `yaml:"html"`
	CapturedAt time.Time     `yaml:"captured_at"`
	Citations  []citationDoc `yaml:"citations"`
}

type citationDoc struct {
	Key     string `yaml:"key"`
	Excerpt string `yaml:"excerpt"`
}

type listingDoc struct {
	Key          string `yaml:"key"`
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Neighborhood string `yaml:"neighborhood"`
	Snapshot     string `yaml:"snapshot"`
}

type changeDoc struct {
	ID         string    `yaml:"id"`
	Listing    string    `yaml:"listing"`
	Field      string    `yaml:"field"`
	Value      scalar    `yaml:"value"`
	OldValue   *scalar   `yaml:"old_value"`
	Citations  []string  `yaml:"citations"`
	Snapshot   string    `yaml:"snapshot"`
	ChangedAt  time.Time `yaml:"changed_at"`
	Confidence float64   `yaml:"confidence"`
}

type specDoc struct {
	ID        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	RawPrompt string          `yaml:"raw_prompt"`
	Hard      []constraintDoc `yaml:"hard"`
}

type constraintDoc struct {
	Name   string   `yaml:"name"`
	Field  string   `yaml:"field"`
	Op     string   `yaml:"op"`
	Bound  scalar   `yaml:"bound"`
	Values []string `yaml:"values"`
}

// scalar decodes a YAML scalar into a domain.Value.
type scalar struct {
	domain.Value
}

// UnmarshalYAML keeps the literal text of numbers so they stay exact.
func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		s.Value = domain.NullValue()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		s.Value = domain.BoolValue(b)
	case "!!int", "!!float":
		if d, err := decimal.NewFromString(node.Value); err == nil {
			s.Value = domain.NumberValue(d)
			return nil
		}
		// Forms such as 0x1F or 1_000 that decimal cannot parse.
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		v := domain.FloatValue(f)
		if v.IsNull() {
			return fmt.Errorf("line %d: %q is not a finite number", node.Line, node.Value)
		}
		s.Value = v
	default:
		s.Value = domain.StringValue(node.Value)
	}
	return nil
}

func (d *bundleDoc) toDomain() *domain.Bundle {
	b := &domain.Bundle{
		SchemaVersion: d.SchemaVersion,
		Snapshots:     make([]domain.BundleSnapshot, 0, len(d.Snapshots)),
		Listings:      make([]domain.BundleListing, 0, len(d.Listings)),
		Changes:       make([]domain.BundleChange, 0, len(d.Changes)),
		SearchSpecs:   make([]domain.SearchSpec, 0, len(d.SearchSpecs)),
	}
	for _, s := range d.Snapshots {
		snap := domain.BundleSnapshot{
			Key: s.Key, URL: s.URL, SourceID: s.SourceID,
			Text: s.Text, HTML: s.HTML, CapturedAt: s.CapturedAt,
		}
		for _, c := range s.Citations {
			snap.Citations = append(snap.Citations, domain.BundleCitation{Key: c.Key, Excerpt: c.Excerpt})
		}
		b.Snapshots = append(b.Snapshots, snap)
	}
	for _, l := range d.Listings {
		b.Listings = append(b.Listings, domain.BundleListing{
			Key: l.Key, ID: l.ID, Title: l.Title, Neighborhood: l.Neighborhood, Snapshot: l.Snapshot,
		})
	}
	for _, c := range d.Changes {
		change := domain.BundleChange{
			ID: c.ID, Listing: c.Listing, Field: c.Field, Value: c.Value.Value,
			Citations: c.Citations, Snapshot: c.Snapshot,
			ChangedAt: c.ChangedAt, Confidence: c.Confidence,
		}
		if c.OldValue != nil {
			old := c.OldValue.Value
			change.OldValue = &old
		}
		b.Changes = append(b.Changes, change)
	}
	for _, s := range d.SearchSpecs {
		spec := domain.SearchSpec{ID: s.ID, Name: s.Name, RawPrompt: s.RawPrompt,
			Hard: make([]domain.Constraint, 0, len(s.Hard))}
		for _, c := range s.Hard {
			spec.Hard = append(spec.Hard, domain.Constraint{
				Name: c.Name, Field: c.Field, Op: domain.ConstraintOp(c.Op),
				Bound: c.Bound.Value, Values: c.Values,
			})
		}
		b.SearchSpecs = append(b.SearchSpecs, spec)
	}
	return b
}
