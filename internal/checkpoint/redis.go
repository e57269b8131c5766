package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"week-planner/internal/conversation"
)

// DefaultKeyPrefix Redis key 前缀
const DefaultKeyPrefix = "weekplan:checkpoint:"

// RedisConfig Redis 存储配置
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration // 0 表示不过期
}

// RedisStore 基于 Redis 的 Checkpoint 存储，多进程共享
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore 连接 Redis 并 ping
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreWithClient 复用已有 client
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + sessionID }

// Load 实现 Store
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*conversation.State, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get checkpoint %s: %w", sessionID, err)
	}
	return conversation.Decode(data)
}

// Save 实现 Store
func (s *RedisStore) Save(ctx context.Context, sessionID string, state *conversation.State) error {
	data, err := conversation.Encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set checkpoint %s: %w", sessionID, err)
	}
	return nil
}

// Close 实现 Store
func (s *RedisStore) Close() error { return s.client.Close() }
