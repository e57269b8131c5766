// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"week-planner/internal/conversation"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS conversation_checkpoints (
	session_id TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgStore PostgreSQL 实现，多进程共享
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore 连接 PostgreSQL 并确保表存在
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	s := &PgStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPgStoreWithPool 复用已有连接池（调用方负责建表）
func NewPgStoreWithPool(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("postgres migrate conversation_checkpoints: %w", err)
	}
	return nil
}

// Load 实现 Store
func (s *PgStore) Load(ctx context.Context, sessionID string) (*conversation.State, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM conversation_checkpoints WHERE session_id = $1`,
		sessionID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return conversation.Decode(data)
}

// Save 实现 Store
func (s *PgStore) Save(ctx context.Context, sessionID string, state *conversation.State) error {
	data, err := conversation.Encode(state)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO conversation_checkpoints (session_id, state, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (session_id) DO UPDATE SET
		   state = EXCLUDED.state,
		   updated_at = now()`,
		sessionID, data,
	)
	return err
}

// Close 实现 Store
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}
