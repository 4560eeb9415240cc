package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ragchat/internal/config"
	"ragchat/internal/models"
)

// Error kinds surfaced by every Store backend. Callers match with errors.Is.
var (
	ErrNotFound = errors.New("conversation not found")
	ErrIO       = errors.New("storage io failure")
	ErrParse    = errors.New("stored conversation unreadable")
)

// Store persists conversation snapshots keyed by conversation id.
// Save overwrites any prior snapshot for the id (last-write-wins, no
// versioning). ListAll returns every stored record in unspecified order;
// callers sort.
type Store interface {
	Save(ctx context.Context, record *models.ConversationRecord) error
	Load(ctx context.Context, id string) (*models.ConversationRecord, error)
	ListAll(ctx context.Context) ([]*models.ConversationRecord, error)
	Close() error
}

// Open constructs the configured store backend.
func Open(cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "", "file":
		store, err := NewFileStore(cfg.Storage.ConversationsDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite", "sqlite3", "mysql":
		store, err := NewSQLStore(cfg.Storage.Backend, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
