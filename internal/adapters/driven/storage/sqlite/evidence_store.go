package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

const evidenceColumns = "e.id, e.snapshot_id, e.kind, e.excerpt, e.start_char, e.end_char, " +
	"e.text_hash, e.source_format, e.created_at"

// evidenceStore implements driven.EvidenceStore.
type evidenceStore struct {
	store *Store
}

var _ driven.EvidenceStore = (*evidenceStore)(nil)

// Save inserts a citation. The locator columns are NULL for summaries.
func (s *evidenceStore) Save(ctx context.Context, ev domain.Evidence) error {
	var start, end sql.NullInt64
	var textHash, format sql.NullString
	if ev.Locator != nil {
		start = sql.NullInt64{Int64: int64(ev.Locator.StartChar), Valid: true}
		end = sql.NullInt64{Int64: int64(ev.Locator.EndChar), Valid: true}
		textHash = sql.NullString{String: ev.Locator.TextHash, Valid: true}
		format = sql.NullString{String: ev.Locator.SourceFormat, Valid: true}
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO evidence (id, snapshot_id, kind, excerpt, start_char, end_char,
			text_hash, source_format, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.SnapshotID, string(ev.Kind), ev.Excerpt, start, end, textHash, format, toNanos(ev.CreatedAt))
	if err != nil {
		return insertErr("evidence", ev.ID, err)
	}
	return nil
}

// Get retrieves a citation by ID.
func (s *evidenceStore) Get(ctx context.Context, id string) (*domain.Evidence, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+evidenceColumns+` FROM evidence e WHERE e.id = ?`, id)
	ev, err := scanEvidence(row)
	if err != nil {
		return nil, notFound("evidence", id, err)
	}
	return ev, nil
}

// ListBySnapshot returns the citations drawn from a snapshot, oldest first.
func (s *evidenceStore) ListBySnapshot(ctx context.Context, snapshotID string) ([]domain.Evidence, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+evidenceColumns+` FROM evidence e
		WHERE e.snapshot_id = ?
		ORDER BY e.created_at, e.rowid
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying evidence: %w", err)
	}
	defer rows.Close()

	result := []domain.Evidence{}
	for rows.Next() {
		ev, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning evidence: %w", err)
		}
		result = append(result, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evidence: %w", err)
	}
	return result, nil
}

// scanEvidence reads evidenceColumns, optionally preceded by extra columns.
func scanEvidence(row scanner, prefix ...any) (*domain.Evidence, error) {
	var ev domain.Evidence
	var kind string
	var start, end sql.NullInt64
	var textHash, format sql.NullString
	var createdAt int64

	dest := append(prefix, &ev.ID, &ev.SnapshotID, &kind, &ev.Excerpt,
		&start, &end, &textHash, &format, &createdAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	ev.Kind = domain.EvidenceKind(kind)
	ev.CreatedAt = fromNanos(createdAt)
	if start.Valid && end.Valid {
		ev.Locator = &domain.Locator{
			StartChar:    int(start.Int64),
			EndChar:      int(end.Int64),
			TextHash:     textHash.String,
			SourceFormat: format.String,
		}
	}
	return &ev, nil
}
