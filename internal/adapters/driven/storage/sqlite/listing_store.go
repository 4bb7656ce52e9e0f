package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

const listingColumns = "id, title, neighborhood, snapshot_id, registered_snapshot_id, " +
	"revision, created_at, updated_at"

// listingStore implements driven.ListingStore.
//
// Field values are stored as JSON scalars. Field evidence is stored by
// reference and joined back on read.
type listingStore struct {
	store *Store
}

var _ driven.ListingStore = (*listingStore)(nil)

// Create inserts a new listing together with any initial fields.
func (s *listingStore) Create(ctx context.Context, l domain.Listing) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO listings (`+listingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, l.Title, l.Neighborhood, l.SnapshotID, l.RegisteredSnapshotID,
			l.Revision, toNanos(l.CreatedAt), toNanos(l.UpdatedAt))
		if err != nil {
			return insertErr("listing", l.ID, err)
		}
		return insertFields(ctx, tx, &l)
	})
}

// Save replaces the stored projection of an existing listing.
func (s *listingStore) Save(ctx context.Context, l domain.Listing) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		return saveListing(ctx, tx, l)
	})
}

func saveListing(ctx context.Context, tx *sql.Tx, l domain.Listing) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE listings SET title = ?, neighborhood = ?, snapshot_id = ?,
			registered_snapshot_id = ?, revision = ?, created_at = ?, updated_at = ?
		WHERE id = ?
	`, l.Title, l.Neighborhood, l.SnapshotID, l.RegisteredSnapshotID,
		l.Revision, toNanos(l.CreatedAt), toNanos(l.UpdatedAt), l.ID)
	if err != nil {
		return fmt.Errorf("updating listing %s: %w", l.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("listing %s: %w", l.ID, domain.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_fields WHERE listing_id = ?`, l.ID); err != nil {
		return fmt.Errorf("clearing fields of %s: %w", l.ID, err)
	}
	return insertFields(ctx, tx, &l)
}

// Get retrieves a listing by ID.
func (s *listingStore) Get(ctx context.Context, id string) (*domain.Listing, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	l, err := scanListing(row)
	if err != nil {
		return nil, notFound("listing", id, err)
	}
	if err := s.loadFields(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns all listings ordered by ID.
func (s *listingStore) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	var listings []*domain.Listing //nolint:prealloc // size unknown from query
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	rows.Close()

	result := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if err := s.loadFields(ctx, l); err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	return result, nil
}

// loadFields fills l.Fields and their cited evidence.
func (s *listingStore) loadFields(ctx context.Context, l *domain.Listing) error {
	l.Fields = map[string]domain.Field{}

	rows, err := s.store.db.QueryContext(ctx,
		`SELECT name, value, confidence FROM listing_fields WHERE listing_id = ?`, l.ID)
	if err != nil {
		return fmt.Errorf("querying fields of %s: %w", l.ID, err)
	}
	for rows.Next() {
		var name, raw string
		var f domain.Field
		if err := rows.Scan(&name, &raw, &f.Confidence); err != nil {
			rows.Close()
			return fmt.Errorf("scanning field: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &f.Value); err != nil {
			rows.Close()
			return fmt.Errorf("decoding field %s.%s: %w", l.ID, name, err)
		}
		l.Fields[name] = f
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating fields: %w", err)
	}
	rows.Close()

	evRows, err := s.store.db.QueryContext(ctx, `
		SELECT lfe.name, `+evidenceColumns+`
		FROM listing_field_evidence lfe
		JOIN evidence e ON e.id = lfe.evidence_id
		WHERE lfe.listing_id = ?
		ORDER BY lfe.name, lfe.position
	`, l.ID)
	if err != nil {
		return fmt.Errorf("querying field evidence of %s: %w", l.ID, err)
	}
	defer evRows.Close()
	for evRows.Next() {
		var name string
		ev, err := scanEvidence(evRows, &name)
		if err != nil {
			return fmt.Errorf("scanning field evidence: %w", err)
		}
		f := l.Fields[name]
		f.Evidence = append(f.Evidence, *ev)
		l.Fields[name] = f
	}
	if err := evRows.Err(); err != nil {
		return fmt.Errorf("iterating field evidence: %w", err)
	}

	for name, f := range l.Fields {
		l.Fields[name] = f.Normalize()
	}
	return nil
}

func insertFields(ctx context.Context, tx *sql.Tx, l *domain.Listing) error {
	for _, name := range l.FieldNames() {
		f := l.Fields[name]
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("encoding field %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO listing_fields (listing_id, name, value, confidence) VALUES (?, ?, ?, ?)
		`, l.ID, name, string(raw), f.Confidence); err != nil {
			return fmt.Errorf("inserting field %s: %w", name, err)
		}
		for pos, ev := range f.Evidence {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO listing_field_evidence (listing_id, name, position, evidence_id)
				VALUES (?, ?, ?, ?)
			`, l.ID, name, pos, ev.ID); err != nil {
				return fmt.Errorf("inserting evidence for field %s: %w", name, err)
			}
		}
	}
	return nil
}

func scanListing(row scanner) (*domain.Listing, error) {
	var l domain.Listing
	var createdAt, updatedAt int64
	if err := row.Scan(&l.ID, &l.Title, &l.Neighborhood, &l.SnapshotID, &l.RegisteredSnapshotID,
		&l.Revision, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.CreatedAt = fromNanos(createdAt)
	l.UpdatedAt = fromNanos(updatedAt)
	return &l, nil
}
