package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"week-planner/internal/conversation"
)

// DefaultSQLitePath checkpoint_store.path 为空时使用
const DefaultSQLitePath = "data/weekplan.db"

// SQLiteStore 单机文件存储，CLI 重启后可恢复会话
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开 SQLite（WAL 模式）并建表
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("checkpoint: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("checkpoint: pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS conversation_checkpoints (
		session_id TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkpoint: migration: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load 实现 Store
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*conversation.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM conversation_checkpoints WHERE session_id = ?`, sessionID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return conversation.Decode([]byte(data))
}

// Save 实现 Store
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, state *conversation.State) error {
	data, err := conversation.Encode(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation_checkpoints (session_id, state, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id) DO UPDATE SET
		   state = excluded.state,
		   updated_at = CURRENT_TIMESTAMP`,
		sessionID, string(data),
	)
	return err
}

// Close 实现 Store
func (s *SQLiteStore) Close() error { return s.db.Close() }
