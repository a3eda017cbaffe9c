package assessments

import "context"

// Repo persists score records.
type Repo interface {
	Create(ctx context.Context, rec ScoreRecord) error
	Latest(ctx context.Context, projectID string) (ScoreRecord, error)
	History(ctx context.Context, projectID string, limit int) ([]ScoreRecord, error)
}
