package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"ragchat/internal/config"
	"ragchat/internal/models"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// SQLStore keeps the same snapshot-per-id contract as the file store but
// inside a conversations table, so listing does not rescan a directory.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore connects to the configured database and ensures the schema.
func NewSQLStore(dbType string, cfg *config.Config) (*SQLStore, error) {
	dbCfg, ok := cfg.Databases[dbType]
	if !ok {
		return nil, fmt.Errorf("database config for %s not found", dbType)
	}

	var (
		db     *sql.DB
		driver string
		err    error
	)

	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		driver = "sqlite3"
		if dbCfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		db, err = sql.Open("sqlite3", dbCfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
	case "mysql":
		driver = "mysql"
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.Username,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
			dbCfg.Params,
		)
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", dbType)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	store := &SQLStore{db: db, driver: driver}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) migrate() error {
	var stmt string
	switch s.driver {
	case "sqlite3":
		stmt = `CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			saved_at DATETIME NOT NULL,
			payload TEXT NOT NULL
		)`
	case "mysql":
		stmt = `CREATE TABLE IF NOT EXISTS conversations (
			id VARCHAR(64) NOT NULL,
			saved_at DATETIME NOT NULL,
			payload MEDIUMTEXT NOT NULL,
			PRIMARY KEY (id),
			INDEX idx_conversations_saved_at (saved_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	default:
		return fmt.Errorf("unsupported driver for migration: %s", s.driver)
	}
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("migrate (%s): %w", s.driver, err)
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, record *models.ConversationRecord) error {
	if record == nil || record.ID == "" {
		return errors.New("record with id required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode conversation %s: %v", ErrIO, record.ID, err)
	}

	var stmt string
	switch s.driver {
	case "mysql":
		stmt = `INSERT INTO conversations (id, saved_at, payload) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE saved_at = VALUES(saved_at), payload = VALUES(payload)`
	default:
		stmt = `INSERT INTO conversations (id, saved_at, payload) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at, payload = excluded.payload`
	}
	if _, err := s.db.ExecContext(ctx, stmt, record.ID, record.Timestamp.UTC(), string(payload)); err != nil {
		return fmt.Errorf("%w: save conversation %s: %v", ErrIO, record.ID, err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, id string) (*models.ConversationRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM conversations WHERE id = ?`, id,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load conversation %s: %v", ErrIO, id, err)
	}
	return decodeRecord(id, []byte(payload))
}

func (s *SQLStore) ListAll(ctx context.Context) ([]*models.ConversationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM conversations`)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %v", ErrIO, err)
	}
	defer rows.Close()

	var records []*models.ConversationRecord
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("%w: scan conversation: %v", ErrIO, err)
		}
		rec, err := decodeRecord(id, []byte(payload))
		if err != nil {
			log.Printf("skip conversation %s: %v", id, err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate conversations: %v", ErrIO, err)
	}
	return records, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
