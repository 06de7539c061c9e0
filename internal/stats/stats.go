// Package stats keeps the dashboard usage counters.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nikhilbhutani/etpassistant/internal/kv"
)

const Key = "dashboard_stats"

type Kind string

const (
	ETPsCreated    Kind = "etpsCreated"
	RAGQueries     Kind = "ragQueries"
	AssistantUsage Kind = "assistantUsage"
)

type Stats struct {
	ETPsCreated    int `json:"etpsCreated"`
	RAGQueries     int `json:"ragQueries"`
	AssistantUsage int `json:"assistantUsage"`
}

type Counter struct {
	store  kv.Store
	logger *slog.Logger
	mu     sync.Mutex
}

func NewCounter(store kv.Store, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{store: store, logger: logger}
}

// Load returns the stored counters. Missing or unreadable data counts as
// zero.
func (c *Counter) Load(ctx context.Context) Stats {
	var s Stats
	if err := kv.GetJSON(ctx, c.store, Key, &s); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warn("ignoring unreadable stats", "error", err)
		}
		return Stats{}
	}
	return s
}

// Increment bumps one counter and stores the result.
func (c *Counter) Increment(ctx context.Context, kind Kind) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.Load(ctx)
	switch kind {
	case ETPsCreated:
		s.ETPsCreated++
	case RAGQueries:
		s.RAGQueries++
	case AssistantUsage:
		s.AssistantUsage++
	default:
		return s, fmt.Errorf("unknown counter %q", kind)
	}
	if err := kv.SetJSON(ctx, c.store, Key, s); err != nil {
		return s, fmt.Errorf("save stats: %w", err)
	}
	return s, nil
}

// Track increments kind and only logs on failure, for callers that must not
// fail because a counter could not be saved.
func (c *Counter) Track(ctx context.Context, kind Kind) {
	if _, err := c.Increment(ctx, kind); err != nil {
		c.logger.Warn("stats not updated", "counter", kind, "error", err)
	}
}
