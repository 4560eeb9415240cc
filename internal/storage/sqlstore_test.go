package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ragchat/internal/config"
	"ragchat/internal/models"
)

func TestSQLStoreRoundTrip(t *testing.T) {
	store := newTestSQLStore(t)
	defer store.Close()
	ctx := context.Background()

	rec := &models.ConversationRecord{
		ID:        "conv-sql",
		Timestamp: models.Now(),
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "Hi"},
			{Role: models.RoleAssistant, Content: "Hello", References: []models.ReferenceDoc{{Title: "Doc1", Contents: "h\nb"}}},
		},
		MemoryHistory: []models.Message{
			{Role: models.RoleUser, Content: "Hi"},
			{Role: models.RoleAssistant, Content: "Hello"},
		},
	}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := store.Load(ctx, "conv-sql")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(loaded.Messages) != 2 || len(loaded.MemoryHistory) != 2 {
		t.Fatalf("history lengths wrong: %d/%d", len(loaded.Messages), len(loaded.MemoryHistory))
	}
	if loaded.Messages[1].References[0].Title != "Doc1" {
		t.Fatalf("references lost: %#v", loaded.Messages[1])
	}
}

func TestSQLStoreLastWriteWins(t *testing.T) {
	store := newTestSQLStore(t)
	defer store.Close()
	ctx := context.Background()

	if err := store.Save(ctx, &models.ConversationRecord{ID: "c", Timestamp: models.Now()}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	updated := &models.ConversationRecord{
		ID:        "c",
		Timestamp: models.Now(),
		Messages:  []models.Message{{Role: models.RoleUser, Content: "later"}},
	}
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	loaded, err := store.Load(ctx, "c")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(loaded.Messages) != 1 || loaded.Messages[0].Content != "later" {
		t.Fatalf("snapshot not replaced: %#v", loaded.Messages)
	}

	records, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected single snapshot per id, got %d", len(records))
	}
}

func TestSQLStoreLoadMissing(t *testing.T) {
	store := newTestSQLStore(t)
	defer store.Close()
	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: filepath.Join(t.TempDir(), "test.db")},
		},
	}
	store, err := NewSQLStore("sqlite3", cfg)
	if err != nil {
		t.Fatalf("NewSQLStore error: %v", err)
	}
	return store
}
