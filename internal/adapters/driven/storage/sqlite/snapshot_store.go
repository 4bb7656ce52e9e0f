package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

const snapshotColumns = "id, source_id, url, content_hash, text, html, captured_at"

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Save inserts a snapshot. Snapshots are never updated.
func (s *snapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.SourceID, snap.URL, snap.ContentHash, snap.Text, snap.HTML, toNanos(snap.CapturedAt))
	if err != nil {
		return insertErr("snapshot", snap.ID, err)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (s *snapshotStore) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, notFound("snapshot", id, err)
	}
	return snap, nil
}

// FindByContent returns the earliest snapshot of url with contentHash.
func (s *snapshotStore) FindByContent(ctx context.Context, url, contentHash string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM snapshots
		WHERE url = ? AND content_hash = ?
		ORDER BY captured_at, rowid
		LIMIT 1
	`, url, contentHash)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, notFound("snapshot for", url, err)
	}
	return snap, nil
}

// List returns all snapshots ordered by capture time.
func (s *snapshotStore) List(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY captured_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	result := []domain.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		result = append(result, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return result, nil
}

func scanSnapshot(row scanner) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var capturedAt int64
	if err := row.Scan(&snap.ID, &snap.SourceID, &snap.URL, &snap.ContentHash,
		&snap.Text, &snap.HTML, &capturedAt); err != nil {
		return nil, err
	}
	snap.CapturedAt = fromNanos(capturedAt)
	return &snap, nil
}
