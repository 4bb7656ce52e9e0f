package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

const changeColumns = "seq, id, listing_id, field_path, old_value, new_value, " +
	"changed_at, snapshot_id, confidence"

// changeStore implements driven.ChangeStore over an AUTOINCREMENT table,
// so seq doubles as the insertion-order tie breaker.
type changeStore struct {
	store *Store
}

var _ driven.ChangeStore = (*changeStore)(nil)

var _ driven.ChangeRecorder = (*changeStore)(nil)

// Append inserts a change and its evidence references in one transaction.
func (s *changeStore) Append(ctx context.Context, change *domain.ListingChange) error {
	var seq int64
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		seq, err = appendChange(ctx, tx, change)
		return err
	})
	if err != nil {
		return err
	}
	change.Sequence = seq
	return nil
}

// Record appends change and saves the projection it yields in one
// transaction.
func (s *changeStore) Record(ctx context.Context, change *domain.ListingChange, project func(domain.ListingChange) domain.Listing) error {
	var seq int64
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if seq, err = appendChange(ctx, tx, change); err != nil {
			return err
		}
		recorded := *change
		recorded.Sequence = seq
		return saveListing(ctx, tx, project(recorded))
	})
	if err != nil {
		return err
	}
	change.Sequence = seq
	return nil
}

// appendChange inserts change and its evidence references, returning the
// assigned sequence.
func appendChange(ctx context.Context, tx *sql.Tx, change *domain.ListingChange) (int64, error) {
	oldRaw, err := json.Marshal(change.OldValue)
	if err != nil {
		return 0, fmt.Errorf("encoding old value: %w", err)
	}
	newRaw, err := json.Marshal(change.NewValue)
	if err != nil {
		return 0, fmt.Errorf("encoding new value: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO listing_changes (id, listing_id, field_path, old_value, new_value,
			changed_at, snapshot_id, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, change.ID, change.ListingID, change.FieldPath, string(oldRaw), string(newRaw),
		toNanos(change.ChangedAt), change.SnapshotID, change.Confidence)
	if err != nil {
		return 0, insertErr("listing change", change.ID, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading change sequence: %w", err)
	}
	for pos, ev := range change.Evidence {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO listing_change_evidence (change_id, position, evidence_id) VALUES (?, ?, ?)
		`, change.ID, pos, ev.ID); err != nil {
			return 0, fmt.Errorf("inserting evidence for change %s: %w", change.ID, err)
		}
	}
	return seq, nil
}

// Get retrieves a change by ID.
func (s *changeStore) Get(ctx context.Context, id string) (*domain.ListingChange, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+changeColumns+` FROM listing_changes WHERE id = ?`, id)
	change, err := scanChange(row)
	if err != nil {
		return nil, notFound("listing change", id, err)
	}
	evidence, err := s.evidenceFor(ctx, `ce.change_id = ?`, id)
	if err != nil {
		return nil, err
	}
	change.Evidence = evidence[id]
	if change.Evidence == nil {
		change.Evidence = []domain.Evidence{}
	}
	return change, nil
}

// ListFor returns a listing's changes in replay order.
func (s *changeStore) ListFor(ctx context.Context, listingID string) ([]domain.ListingChange, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+changeColumns+` FROM listing_changes
		WHERE listing_id = ?
		ORDER BY changed_at, seq
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	result := []domain.ListingChange{}
	for rows.Next() {
		change, err := scanChange(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		result = append(result, *change)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating changes: %w", err)
	}
	rows.Close()

	evidence, err := s.evidenceFor(ctx,
		`ce.change_id IN (SELECT id FROM listing_changes WHERE listing_id = ?)`, listingID)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Evidence = evidence[result[i].ID]
		if result[i].Evidence == nil {
			result[i].Evidence = []domain.Evidence{}
		}
	}
	return result, nil
}

// evidenceFor loads cited evidence keyed by change id.
func (s *changeStore) evidenceFor(ctx context.Context, where string, arg any) (map[string][]domain.Evidence, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT ce.change_id, `+evidenceColumns+`
		FROM listing_change_evidence ce
		JOIN evidence e ON e.id = ce.evidence_id
		WHERE `+where+`
		ORDER BY ce.change_id, ce.position
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("querying change evidence: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Evidence)
	for rows.Next() {
		var changeID string
		ev, err := scanEvidence(rows, &changeID)
		if err != nil {
			return nil, fmt.Errorf("scanning change evidence: %w", err)
		}
		out[changeID] = append(out[changeID], *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change evidence: %w", err)
	}
	return out, nil
}

func scanChange(row scanner) (*domain.ListingChange, error) {
	var c domain.ListingChange
	var oldRaw, newRaw string
	var changedAt int64
	if err := row.Scan(&c.Sequence, &c.ID, &c.ListingID, &c.FieldPath, &oldRaw, &newRaw,
		&changedAt, &c.SnapshotID, &c.Confidence); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(oldRaw), &c.OldValue); err != nil {
		return nil, fmt.Errorf("decoding old value of %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(newRaw), &c.NewValue); err != nil {
		return nil, fmt.Errorf("decoding new value of %s: %w", c.ID, err)
	}
	c.ChangedAt = fromNanos(changedAt)
	return &c, nil
}
