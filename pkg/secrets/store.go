// Copyright 2026 fanjia1024
// Secret management abstraction

package secrets

import (
	"context"
	"fmt"
	"strings"
)

// RefPrefix 配置值以此前缀开头时表示引用 secret store 中的 key
const RefPrefix = "secret://"

// Store Secret 存储接口（只读）
type Store interface {
	// Get 获取 secret 值
	Get(ctx context.Context, key string) (string, error)
}

// Config Secret Store 配置
type Config struct {
	Provider string      // env | vault | memory
	Vault    VaultConfig // provider=vault 时使用
}

// NewStore 创建 Secret Store
func NewStore(config Config) (Store, error) {
	switch config.Provider {
	case "", "env":
		return NewEnvStore(), nil
	case "memory":
		return NewMapStore(nil), nil
	case "vault":
		return NewVaultStore(config.Vault)
	default:
		return nil, fmt.Errorf("unsupported secret provider: %s", config.Provider)
	}
}

// Resolve 若 value 为 secret://<key> 则从 store 读取，否则原样返回
func Resolve(ctx context.Context, store Store, value string) (string, error) {
	if !strings.HasPrefix(value, RefPrefix) {
		return value, nil
	}
	if store == nil {
		return "", fmt.Errorf("secret reference %q without secret store", value)
	}
	return store.Get(ctx, strings.TrimPrefix(value, RefPrefix))
}

// MapStore 基于 map 的只读 Store（测试与内置配置使用）
type MapStore struct {
	values map[string]string
}

// NewMapStore 创建 MapStore
func NewMapStore(values map[string]string) *MapStore {
	if values == nil {
		values = map[string]string{}
	}
	return &MapStore{values: values}
}

// Get 实现 Store
func (m *MapStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("secret not found: %s", key)
	}
	return v, nil
}
