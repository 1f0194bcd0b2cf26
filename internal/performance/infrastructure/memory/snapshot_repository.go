package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pvmonitor-cloud/internal/performance/application"
)

// SnapshotRepository is an in-memory snapshot store for demo/testing.
type SnapshotRepository struct {
	mu   sync.RWMutex
	data map[string]application.ReportSnapshot
}

// NewSnapshotRepository constructs a repository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{data: make(map[string]application.ReportSnapshot)}
}

// Save persists a snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot application.ReportSnapshot) error {
	_ = ctx
	if snapshot.ID == "" {
		return errors.New("memory snapshot repo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[snapshot.ID] = snapshot
	return nil
}

// GetByID loads a snapshot by id.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*application.ReportSnapshot, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.data[id]
	if !ok {
		return nil, application.ErrSnapshotNotFound
	}
	return &snapshot, nil
}

// ListByInstallation returns snapshots for an installation, newest first.
func (r *SnapshotRepository) ListByInstallation(ctx context.Context, installationID string, limit int) ([]application.ReportSnapshot, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]application.ReportSnapshot, 0, len(r.data))
	for _, snapshot := range r.data {
		if snapshot.InstallationID == installationID {
			result = append(result, snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
