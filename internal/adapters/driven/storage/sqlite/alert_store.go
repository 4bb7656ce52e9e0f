package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

const alertColumns = "id, listing_id, listing_change_id, search_spec_id, field_path, " +
	"status, created_at, updated_at"

// alertStore implements driven.AlertStore.
type alertStore struct {
	store *Store
}

var _ driven.AlertStore = (*alertStore)(nil)

// Create inserts an alert. The UNIQUE listing_change_id column enforces one
// alert per change.
func (s *alertStore) Create(ctx context.Context, alert domain.Alert) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.ListingID, alert.ListingChangeID, alert.SearchSpecID, alert.FieldPath,
		alert.Status.String(), toNanos(alert.CreatedAt), toNanos(alert.UpdatedAt))
	if err != nil {
		return insertErr("alert", alert.ID, err)
	}
	return nil
}

// Update replaces the status and updated_at of an alert whose stored status
// is still from. The status check is part of the UPDATE, so of two racing
// transitions only one matches a row.
func (s *alertStore) Update(ctx context.Context, alert domain.Alert, from domain.AlertStatus) error {
	res, err := s.store.db.ExecContext(ctx,
		`UPDATE alerts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		alert.Status.String(), toNanos(alert.UpdatedAt), alert.ID, from.String())
	if err != nil {
		return fmt.Errorf("updating alert %s: %w", alert.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating alert %s: %w", alert.ID, err)
	}
	if n > 0 {
		return nil
	}

	current, err := s.Get(ctx, alert.ID)
	if err != nil {
		return err
	}
	return fmt.Errorf("alert %s is %s, not %s: %w", alert.ID, current.Status, from, domain.ErrInvalidState)
}

// Get retrieves an alert by ID.
func (s *alertStore) Get(ctx context.Context, id string) (*domain.Alert, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	alert, err := scanAlert(row)
	if err != nil {
		return nil, notFound("alert", id, err)
	}
	return alert, nil
}

// GetByChange retrieves the alert raised for a listing change.
func (s *alertStore) GetByChange(ctx context.Context, listingChangeID string) (*domain.Alert, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE listing_change_id = ?`, listingChangeID)
	alert, err := scanAlert(row)
	if err != nil {
		return nil, notFound("alert for change", listingChangeID, err)
	}
	return alert, nil
}

// List returns alerts matching the filter, newest first.
func (s *alertStore) List(ctx context.Context, filter driven.AlertFilter) ([]domain.Alert, error) {
	var where []string
	var args []any
	if filter.Status.IsValid() {
		where = append(where, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.ListingID != "" {
		where = append(where, "listing_id = ?")
		args = append(args, filter.ListingID)
	}
	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	result := []domain.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		result = append(result, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}
	return result, nil
}

func scanAlert(row scanner) (*domain.Alert, error) {
	var a domain.Alert
	var status string
	var createdAt, updatedAt int64
	if err := row.Scan(&a.ID, &a.ListingID, &a.ListingChangeID, &a.SearchSpecID, &a.FieldPath,
		&status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseAlertStatus(status)
	if err != nil {
		return nil, fmt.Errorf("alert %s: %w", a.ID, err)
	}
	a.Status = parsed
	a.CreatedAt = fromNanos(createdAt)
	a.UpdatedAt = fromNanos(updatedAt)
	return &a, nil
}
