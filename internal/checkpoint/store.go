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
	"fmt"
	"sync"
	"time"

	"week-planner/internal/conversation"
	"week-planner/pkg/config"
)

// Store 按会话 ID 持久化对话状态；未知会话 Load 返回 (nil, nil)
type Store interface {
	Load(ctx context.Context, sessionID string) (*conversation.State, error)
	Save(ctx context.Context, sessionID string, state *conversation.State) error
	Close() error
}

// LoadOrNew 读取会话状态，不存在时返回空状态
func LoadOrNew(ctx context.Context, s Store, sessionID string) (*conversation.State, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return conversation.New(), nil
	}
	return st, nil
}

// NewStore 按 checkpoint_store.type 创建存储
func NewStore(ctx context.Context, cfg config.CheckpointStoreConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, RedisConfig{
			Addr:      cfg.Addr,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       config.ParseDuration(cfg.TTL, 0),
		})
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("checkpoint_store.dsn is required for postgres")
		}
		return NewPgStore(ctx, cfg.DSN)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported checkpoint store type: %s", cfg.Type)
	}
}

// MemoryStore 内存实现；保存编码后的字节，读写互不共享内存
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	data      []byte
	updatedAt time.Time
}

// NewMemoryStore 创建内存 Checkpoint 存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

// Load 实现 Store
func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*conversation.State, error) {
	m.mu.RLock()
	item, ok := m.items[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return conversation.Decode(item.data)
}

// Save 实现 Store
func (m *MemoryStore) Save(ctx context.Context, sessionID string, state *conversation.State) error {
	data, err := conversation.Encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[sessionID] = memoryItem{data: data, updatedAt: time.Now()}
	m.mu.Unlock()
	return nil
}

// Close 实现 Store
func (m *MemoryStore) Close() error { return nil }
