package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store, used when no durable backend is
// configured. Entries do not survive process restart.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*Model
	byName   map[string]string // name -> most recent ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*Model),
		byName: make(map[string]string),
	}
}

func (s *MemoryStore) Put(ctx context.Context, m *Model) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	stored := *m
	s.byID[m.ID] = &stored
	if m.Name != "" {
		s.byName[m.Name] = m.ID
	}

	return m.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *MemoryStore) GetByName(ctx context.Context, name string) (*Model, error) {
	s.mu.RLock()
	id, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *MemoryStore) List(ctx context.Context, limit, offset int) ([]*Model, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Model, 0, len(s.byID))
	for _, m := range s.byID {
		copied := *m
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []*Model{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
