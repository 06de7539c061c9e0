package backend

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StatusFetcher asks the backend which capabilities are live.
type StatusFetcher interface {
	Status(ctx context.Context) (Status, error)
}

// StatusCache holds the last capability status seen. Workflows gate on
// Current, which never touches the network; only Refresh does.
type StatusCache struct {
	fetcher StatusFetcher
	logger  *slog.Logger

	mu      sync.RWMutex
	status  Status
	fetched time.Time
}

func NewStatusCache(fetcher StatusFetcher, logger *slog.Logger) *StatusCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusCache{fetcher: fetcher, logger: logger}
}

// Refresh fetches the status. On failure every capability is marked off
// and the error is returned.
func (s *StatusCache) Refresh(ctx context.Context) (Status, error) {
	st, err := s.fetcher.Status(ctx)
	if err != nil {
		s.logger.Warn("backend status unavailable", "error", err)
		st = Status{}
	}
	s.mu.Lock()
	s.status = st
	s.fetched = time.Now()
	s.mu.Unlock()
	return st, err
}

// Current returns the cached status; all off until the first Refresh.
func (s *StatusCache) Current() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Set replaces the cached status without a request.
func (s *StatusCache) Set(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.fetched = time.Now()
}

// FetchedAt is when the status was last stored; zero if never.
func (s *StatusCache) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}
