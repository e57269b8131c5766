// Copyright 2026 fanjia1024
// Tests for secret stores

package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewStore_Providers(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		wantErr     bool
		errContains string
	}{
		{name: "default is env", provider: "", wantErr: false},
		{name: "env", provider: "env", wantErr: false},
		{name: "memory", provider: "memory", wantErr: false},
		{name: "vault", provider: "vault", wantErr: false},
		{name: "unknown provider", provider: "k8s", wantErr: true, errContains: "unsupported secret provider"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := NewStore(Config{Provider: tc.provider})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("error = %q, want contains %q", err.Error(), tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatalf("store should not be nil")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := NewMapStore(map[string]string{"openai": "sk-123"})

	got, err := Resolve(ctx, store, "plain-value")
	if err != nil || got != "plain-value" {
		t.Fatalf("plain value: got %q err %v", got, err)
	}
	got, err = Resolve(ctx, store, "secret://openai")
	if err != nil || got != "sk-123" {
		t.Fatalf("secret ref: got %q err %v", got, err)
	}
	if _, err := Resolve(ctx, store, "secret://missing"); err == nil {
		t.Fatal("missing secret should fail")
	}
	if _, err := Resolve(ctx, nil, "secret://openai"); err == nil {
		t.Fatal("nil store with reference should fail")
	}
}

func TestEnvStore(t *testing.T) {
	t.Setenv("WEEKPLAN_SECRET_TEST", "value")
	s := NewEnvStore()
	got, err := s.Get(context.Background(), "WEEKPLAN_SECRET_TEST")
	if err != nil || got != "value" {
		t.Fatalf("get: %q %v", got, err)
	}
	if _, err := s.Get(context.Background(), "WEEKPLAN_SECRET_UNSET"); err == nil {
		t.Fatal("unset variable should fail")
	}
}

func TestVaultStore_KVv2(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/weekplan/openai" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"value":"sk-vault"},"metadata":{"version":1}}}`))
	}))
	defer srv.Close()

	s, err := NewVaultStore(VaultConfig{Address: srv.URL, Token: "root", PathPrefix: "secret/data/weekplan"})
	if err != nil {
		t.Fatalf("NewVaultStore: %v", err)
	}
	got, err := s.Get(context.Background(), "openai")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "sk-vault" {
		t.Fatalf("Get = %q, want sk-vault", got)
	}
	if _, err := s.Get(context.Background(), "missing"); err == nil {
		t.Fatal("missing secret should fail")
	}
}
