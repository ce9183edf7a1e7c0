package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a classification with its full result payload.
func (r *PGRepo) Create(ctx context.Context, cl Classification) error {
	const query = `
INSERT INTO classifications (
    id,
    sample_id,
    matrix,
    rulesets,
    include_hazard,
    summary,
    result,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	rulesets, err := json.Marshal(cl.Rulesets)
	if err != nil {
		return fmt.Errorf("marshal rulesets: %w", err)
	}
	summary, err := json.Marshal(cl.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	result, err := json.Marshal(cl.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var matrix sql.NullString
	if cl.Matrix != "" {
		matrix = sql.NullString{String: cl.Matrix, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		cl.ID,
		cl.SampleID,
		matrix,
		rulesets,
		cl.IncludeHazard,
		summary,
		result,
		cl.CreatedAt,
	)
	return err
}

// GetByID fetches one classification with its result payload.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Classification, error) {
	const query = `
SELECT id, sample_id, matrix, rulesets, include_hazard, summary, result, created_at
FROM classifications
WHERE id = $1`

	var cl Classification
	var matrix sql.NullString
	var rulesets, summary, result []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&cl.ID,
		&cl.SampleID,
		&matrix,
		&rulesets,
		&cl.IncludeHazard,
		&summary,
		&result,
		&cl.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Classification{}, ErrNotFound
		}
		return Classification{}, err
	}
	if matrix.Valid {
		cl.Matrix = matrix.String
	}
	if err := decodePayloads(&cl, rulesets, summary, result); err != nil {
		return Classification{}, err
	}
	return cl, nil
}

// List returns classifications newest-first, honoring limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Classification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, sample_id, matrix, rulesets, include_hazard, summary, result, created_at
FROM classifications
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Classification
	for rows.Next() {
		var cl Classification
		var matrix sql.NullString
		var rulesets, summary, result []byte
		if err := rows.Scan(
			&cl.ID,
			&cl.SampleID,
			&matrix,
			&rulesets,
			&cl.IncludeHazard,
			&summary,
			&result,
			&cl.CreatedAt,
		); err != nil {
			return nil, err
		}
		if matrix.Valid {
			cl.Matrix = matrix.String
		}
		if err := decodePayloads(&cl, rulesets, summary, result); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

func decodePayloads(cl *Classification, rulesets, summary, result []byte) error {
	if len(rulesets) > 0 {
		if err := json.Unmarshal(rulesets, &cl.Rulesets); err != nil {
			return fmt.Errorf("decode rulesets: %w", err)
		}
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &cl.Summary); err != nil {
			return fmt.Errorf("decode summary: %w", err)
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &cl.Result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
