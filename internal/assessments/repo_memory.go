package assessments

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps score records in memory.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string][]ScoreRecord
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string][]ScoreRecord)}
}

func (m *MemoryRepo) Create(ctx context.Context, rec ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Scores = copyScores(rec.Scores)
	list := append(m.records[rec.ProjectID], rec)
	sort.SliceStable(list, func(i, j int) bool { return list[i].AssessedAt.After(list[j].AssessedAt) })
	m.records[rec.ProjectID] = list
	return nil
}

func (m *MemoryRepo) Latest(ctx context.Context, projectID string) (ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.records[projectID]
	if len(list) == 0 {
		return ScoreRecord{}, ErrNotFound
	}
	rec := list[0]
	rec.Scores = copyScores(rec.Scores)
	return rec, nil
}

func (m *MemoryRepo) History(ctx context.Context, projectID string, limit int) ([]ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.records[projectID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]ScoreRecord, len(list))
	for i, rec := range list {
		rec.Scores = copyScores(rec.Scores)
		out[i] = rec
	}
	return out, nil
}
