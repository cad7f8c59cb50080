package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

const (
	KeyObjectives  = "objectives"
	KeyPlayerStats = "playerStats"
)

// SnapshotStore persists opaque payloads by key.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
