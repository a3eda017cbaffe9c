package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"governance-backend/internal/governance"
)

// PGRepo implements Repo using the governance_scores table.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, rec ScoreRecord) error {
	const query = `
INSERT INTO governance_scores (
    id,
    project_id,
    user_id,
    scores,
    overall,
    implemented_controls,
    total_controls,
    assessed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.ProjectID,
		rec.UserID,
		scores,
		rec.Overall,
		rec.ImplementedControls,
		rec.TotalControls,
		rec.AssessedAt,
	)
	return err
}

const selectScores = `
SELECT id, project_id, user_id, scores, overall, implemented_controls, total_controls, assessed_at
FROM governance_scores
WHERE project_id = $1
ORDER BY assessed_at DESC`

func (r *PGRepo) Latest(ctx context.Context, projectID string) (ScoreRecord, error) {
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, selectScores+"\nLIMIT 1", projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ScoreRecord{}, ErrNotFound
		}
		return ScoreRecord{}, err
	}
	return rec, nil
}

func (r *PGRepo) History(ctx context.Context, projectID string, limit int) ([]ScoreRecord, error) {
	rows, err := r.DB.QueryContext(ctx, selectScores+"\nLIMIT $2", projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ScoreRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (ScoreRecord, error) {
	var rec ScoreRecord
	var scores []byte
	if err := row.Scan(
		&rec.ID,
		&rec.ProjectID,
		&rec.UserID,
		&scores,
		&rec.Overall,
		&rec.ImplementedControls,
		&rec.TotalControls,
		&rec.AssessedAt,
	); err != nil {
		return ScoreRecord{}, err
	}
	rec.Scores = map[governance.Framework]float64{}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &rec.Scores); err != nil {
			return ScoreRecord{}, fmt.Errorf("decode scores: %w", err)
		}
	}
	return rec, nil
}
