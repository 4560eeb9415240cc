package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ragchat/internal/models"
)

// FileStore keeps one JSON file per conversation id inside a single
// directory, mirroring the durable record format exactly.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("conversations directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create conversations dir %s: %v", ErrIO, dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the full snapshot atomically: encode to a temp file in the
// same directory, then rename over the previous snapshot.
func (s *FileStore) Save(ctx context.Context, record *models.ConversationRecord) error {
	if record == nil || record.ID == "" {
		return errors.New("record with id required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode conversation %s: %v", ErrIO, record.ID, err)
	}
	tmp, err := os.CreateTemp(s.dir, record.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp snapshot for %s: %v", ErrIO, record.ID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write snapshot for %s: %v", ErrIO, record.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close snapshot for %s: %v", ErrIO, record.ID, err)
	}
	if err := os.Rename(tmpName, s.path(record.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace snapshot for %s: %v", ErrIO, record.ID, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*models.ConversationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: read conversation %s: %v", ErrIO, id, err)
	}
	return decodeRecord(id, data)
}

// ListAll scans the conversations directory. Unreadable snapshots are
// logged and skipped so one corrupt file cannot hide the rest.
func (s *FileStore) ListAll(ctx context.Context) ([]*models.ConversationRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: scan conversations dir: %v", ErrIO, err)
	}
	var records []*models.ConversationRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		rec, err := s.Load(ctx, id)
		if err != nil {
			log.Printf("skip conversation %s: %v", id, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FileStore) Close() error { return nil }

func decodeRecord(id string, data []byte) (*models.ConversationRecord, error) {
	var rec models.ConversationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: conversation %s: %v", ErrParse, id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	// Older snapshots may predate the memory history split.
	if rec.MemoryHistory == nil {
		rec.MemoryHistory = []models.Message{}
	}
	if rec.Messages == nil {
		rec.Messages = []models.Message{}
	}
	return &rec, nil
}
