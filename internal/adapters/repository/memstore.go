package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/climadash/internal/domain/interaction"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/pkg/metrics"
)

const (
	defaultHistorySize           = 32
	defaultMetricsUpdateInterval = 5 * time.Second
)

// ring is a fixed-size history, oldest entry overwritten first.
type ring struct {
	items []interaction.Publication
	next  int
	full  bool
}

func (r *ring) push(p interaction.Publication) {
	r.items[r.next] = p
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) len() int {
	if r.full {
		return len(r.items)
	}
	return r.next
}

// newest returns the i-th newest entry, 0 being the latest.
func (r *ring) newest(i int) interaction.Publication {
	idx := (r.next - 1 - i + len(r.items)) % len(r.items)
	return r.items[idx]
}

// MemoryStore is an in-memory Store. It also satisfies interaction.Publisher.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[model.Page]*ring

	historySize           int
	metricsUpdateInterval time.Duration

	stop chan struct{}
	once sync.Once
}

var _ interaction.Publisher = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		pages:                 make(map[model.Page]*ring),
		historySize:           defaultHistorySize,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stop:                  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.startMetricsUpdater(ctx)
	return s
}

// Close stops background work.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// Publish implements Store and interaction.Publisher.
func (s *MemoryStore) Publish(ctx context.Context, p interaction.Publication) error { //nolint:gocritic // hugeParam: publications are values
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.Page.Valid() {
		return ErrUnknownPage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.pages[p.Page]
	if !ok {
		r = &ring{items: make([]interaction.Publication, s.historySize)}
		s.pages[p.Page] = r
	}
	if r.len() > 0 && r.newest(0).Revision >= p.Revision {
		return fmt.Errorf("%w: page %s has revision %d, got %d",
			ErrStaleRevision, p.Page, r.newest(0).Revision, p.Revision)
	}
	r.push(p)
	return nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(_ context.Context, page model.Page) (interaction.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.pages[page]
	if !ok || r.len() == 0 {
		return interaction.Publication{}, ErrNotFound
	}
	return r.newest(0), nil
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, page model.Page, limit int) ([]interaction.Publication, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.pages[page]
	if !ok || r.len() == 0 {
		return nil, ErrNotFound
	}
	n := min(limit, r.len())
	out := make([]interaction.Publication, n)
	for i := range n {
		out[i] = r.newest(i)
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, r := range s.pages {
		total += r.len()
	}
	return total
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			metrics.UpdatePublicationsStored(s.Count(ctx))
		}
	}
}
