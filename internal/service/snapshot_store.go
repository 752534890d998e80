package service

import (
	"context"

	"github.com/alexanderramin/kallan/internal/progress"
	"github.com/alexanderramin/kallan/internal/repository"
)

type repoSnapshotStore struct {
	repo repository.ProgressRepo
	key  string
}

// NewSnapshotStore stores the snapshot in repo under key.
func NewSnapshotStore(repo repository.ProgressRepo, key string) SnapshotStore {
	if key == "" {
		key = repository.DefaultProgressKey
	}
	return &repoSnapshotStore{repo: repo, key: key}
}

func (s *repoSnapshotStore) Load(ctx context.Context) (progress.Snapshot, error) {
	return s.repo.Load(ctx, s.key)
}

func (s *repoSnapshotStore) Save(ctx context.Context, snap progress.Snapshot) error {
	return s.repo.Save(ctx, s.key, snap)
}

func (s *repoSnapshotStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.key)
}
