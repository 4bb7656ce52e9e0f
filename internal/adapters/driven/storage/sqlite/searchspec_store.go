package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

const searchSpecColumns = "id, name, raw_prompt, hard, created_at"

// searchSpecStore implements driven.SearchSpecStore. Constraints are kept
// as a JSON document.
type searchSpecStore struct {
	store *Store
}

var _ driven.SearchSpecStore = (*searchSpecStore)(nil)

// Save inserts a spec.
func (s *searchSpecStore) Save(ctx context.Context, spec domain.SearchSpec) error {
	hard := spec.Hard
	if hard == nil {
		hard = []domain.Constraint{}
	}
	hardJSON, err := json.Marshal(hard)
	if err != nil {
		return fmt.Errorf("marshalling constraints: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO search_specs (`+searchSpecColumns+`) VALUES (?, ?, ?, ?, ?)
	`, spec.ID, spec.Name, spec.RawPrompt, string(hardJSON), toNanos(spec.CreatedAt))
	if err != nil {
		return insertErr("search spec", spec.ID, err)
	}
	return nil
}

// Get retrieves a spec by ID.
func (s *searchSpecStore) Get(ctx context.Context, id string) (*domain.SearchSpec, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+searchSpecColumns+` FROM search_specs WHERE id = ?`, id)
	spec, err := scanSearchSpec(row)
	if err != nil {
		return nil, notFound("search spec", id, err)
	}
	return spec, nil
}

// List returns all specs, newest first.
func (s *searchSpecStore) List(ctx context.Context) ([]domain.SearchSpec, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+searchSpecColumns+` FROM search_specs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying search specs: %w", err)
	}
	defer rows.Close()

	result := []domain.SearchSpec{}
	for rows.Next() {
		spec, err := scanSearchSpec(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning search spec: %w", err)
		}
		result = append(result, *spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search specs: %w", err)
	}
	return result, nil
}

func scanSearchSpec(row scanner) (*domain.SearchSpec, error) {
	var spec domain.SearchSpec
	var hardJSON string
	var createdAt int64
	if err := row.Scan(&spec.ID, &spec.Name, &spec.RawPrompt, &hardJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(hardJSON), &spec.Hard); err != nil {
		return nil, fmt.Errorf("unmarshalling constraints of %s: %w", spec.ID, err)
	}
	spec.CreatedAt = fromNanos(createdAt)
	return &spec, nil
}
