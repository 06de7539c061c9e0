// Package kv is the key-value store that holds drafts, transcripts and
// counters between runs.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/etpassistant/internal/config"
)

var ErrNotFound = errors.New("key not found")

// Store is the minimal contract workflows depend on. Writes are last-wins;
// nothing coordinates concurrent writers in different processes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Backend is a Store that owns a connection.
type Backend interface {
	Store
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the driver named in cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		r, err := OpenRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "postgres":
		p, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// GetJSON decodes the value at key into dest.
func GetJSON(ctx context.Context, s Store, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.Set(ctx, key, data)
}

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed scopes every key under profile, so several users of one store
// do not see each other's data.
func Prefixed(s Store, profile string) Store {
	if profile == "" {
		return s
	}
	return &prefixed{inner: s, prefix: profile + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}
