// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/logger"
)

const defaultCacheSize = 1024

// Registry hands out one Ready session per user. Concurrent requests for the
// same user share a single load, and failed loads are not cached so the next
// request retries. A user's new session is not loaded until their evicted
// session has drained its queued writes.
type Registry struct {
	catalog *catalog.Catalog
	store   Store
	opts    Options
	log     *logger.Logger

	// mu guards closing and every cache call that can evict
	mu       sync.Mutex
	closing  map[string]chan struct{}
	sessions *lru.Cache[string, *Session]
	loads    singleflight.Group
}

func NewRegistry(c *catalog.Catalog, store Store, size int, opts Options) (*Registry, error) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if size <= 0 {
		size = defaultCacheSize
	}

	r := &Registry{
		catalog: c,
		store:   store,
		opts:    opts,
		log:     opts.Log.With("service", "SessionRegistry"),
		closing: make(map[string]chan struct{}),
	}
	cache, err := lru.NewWithEvict(size, r.retire)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	r.sessions = cache
	return r, nil
}

// Catalog returns the catalog shared by every session.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// Get returns the user's session, loading it if needed.
func (r *Registry) Get(ctx context.Context, userID string) (*Session, error) {
	if s, ok := r.sessions.Get(userID); ok && s.State() == StateReady {
		return s, nil
	}

	v, err, _ := r.loads.Do(userID, func() (interface{}, error) {
		if s, ok := r.sessions.Peek(userID); ok && s.State() == StateReady {
			return s, nil
		}
		if err := r.waitClosed(ctx, userID); err != nil {
			return nil, err
		}
		s := New(userID, r.catalog, r.store, r.opts)
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions.Add(userID, s)
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Evict drops the user's session after flushing its queued writes.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	r.sessions.Remove(userID)
	r.mu.Unlock()
	_ = r.waitClosed(context.Background(), userID)
}

// retire closes an evicted session in the background. The cache calls it
// while r.mu is held.
func (r *Registry) retire(userID string, s *Session) {
	prev := r.closing[userID]
	done := make(chan struct{})
	r.closing[userID] = done

	go func() {
		if prev != nil {
			<-prev
		}
		s.Close()
		r.mu.Lock()
		if r.closing[userID] == done {
			delete(r.closing, userID)
		}
		r.mu.Unlock()
		close(done)
	}()
}

// waitClosed blocks until the user's evicted sessions have drained.
func (r *Registry) waitClosed(ctx context.Context, userID string) error {
	r.mu.Lock()
	done := r.closing[userID]
	r.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: previous session still writing: %w", ErrLoadFailure, ctx.Err())
	}
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Close closes every cached session, waiting for their queues to drain.
func (r *Registry) Close() {
	r.mu.Lock()
	r.sessions.Purge()
	pending := make([]chan struct{}, 0, len(r.closing))
	for _, done := range r.closing {
		pending = append(pending, done)
	}
	r.mu.Unlock()

	for _, done := range pending {
		<-done
	}
	r.log.Info("Session registry closed")
}
