package clientconf

import (
	"context"
	"sort"
	"sync"
)

// Store persists ClientConfiguration records keyed by client name.
// Upsert semantics are atomic last-write-wins per key; the HTTP layer
// additionally serializes same-client saves (see handlers).
type Store interface {
	Upsert(ctx context.Context, cfg *ClientConfiguration) error
	Get(ctx context.Context, name string) (*ClientConfiguration, error)
	Delete(ctx context.Context, name string) error // ErrNotFound when absent
	List(ctx context.Context) ([]string, error)    // client names, sorted
	Close() error
}

// MemStore - volatile in-process store for tests and single-node dev runs
type MemStore struct {
	m sync.Map // name -> ClientConfiguration (by value)
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Upsert(_ context.Context, cfg *ClientConfiguration) error {
	s.m.Store(cfg.Name, *cfg)
	return nil
}

func (s *MemStore) Get(_ context.Context, name string) (*ClientConfiguration, error) {
	v, ok := s.m.Load(name)
	if !ok {
		return nil, ErrNotFound
	}
	cfg := v.(ClientConfiguration)
	return &cfg, nil
}

func (s *MemStore) Delete(_ context.Context, name string) error {
	if _, ok := s.m.LoadAndDelete(name); !ok {
		return ErrNotFound
	}
	return nil
}

func (s *MemStore) List(_ context.Context) ([]string, error) {
	var names []string
	s.m.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names, nil
}

func (s *MemStore) Close() error {
	return nil
}
