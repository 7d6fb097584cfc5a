package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL        = 90 * time.Second
	DefaultMaxEntries = 80
)

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	order     *list.Element
}

// Store is a bounded in-process TTL cache. When full, the oldest inserted key
// is evicted regardless of how often it was read.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      *list.List
	ttl        time.Duration
	maxEntries int
	flight     singleflight.Group
	now        func() time.Time
}

func NewStore(ttl time.Duration, maxEntries int) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Store{
		entries:    make(map[string]*entry),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		s.removeLocked(e)
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.entries[key]; ok {
		s.removeLocked(existing)
	}

	s.sweepLocked(now)
	for len(s.entries) >= s.maxEntries {
		oldest := s.order.Front()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest.Value.(*entry))
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: now.Add(s.ttl),
	}
	e.order = s.order.PushBack(e)
	s.entries[key] = e
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.removeLocked(e)
	}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value or runs loader once per key across
// concurrent callers. A caller whose context ends stops waiting without
// cancelling the load for the others. Loader errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, bool, error) {
	if loader == nil {
		return nil, false, fmt.Errorf("loader is required")
	}
	if key == "" {
		value, err := loader(ctx)
		return value, false, err
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, true, nil
	}

	// The shared load must not inherit one caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	result := s.flight.DoChan(key, func() (any, error) {
		if cached, ok := s.Get(loadCtx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(loadCtx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(loadCtx, key, loaded)
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val, false, nil
	}
}

// sweepLocked drops every expired entry. Entries expire in insertion order
// because the TTL is fixed, so the walk stops at the first live one.
func (s *Store) sweepLocked(now time.Time) {
	for el := s.order.Front(); el != nil; {
		e := el.Value.(*entry)
		if now.Before(e.expiresAt) {
			return
		}
		next := el.Next()
		s.removeLocked(e)
		el = next
	}
}

func (s *Store) removeLocked(e *entry) {
	s.order.Remove(e.order)
	delete(s.entries, e.key)
}
