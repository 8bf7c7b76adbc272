package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps diagrams in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[int64]*Diagram
	nextID   int64
	Clock    Clock
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[int64]*Diagram), nextID: 1}
}

func (s *MemoryStore) List(ctx context.Context) ([]Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Diagram, 0, len(s.diagrams))
	for _, d := range s.diagrams {
		out = append(out, *cloneDiagram(d))
	}
	sortByUpdated(out)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diagrams[id]
	if !ok {
		return nil, fmt.Errorf("diagram %d: %w", id, ErrNotFound)
	}
	return cloneDiagram(d), nil
}

func (s *MemoryStore) Create(ctx context.Context, req CreateRequest) (*Diagram, error) {
	d, err := newDiagram(req, s.Clock.now())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID
	s.nextID++
	s.diagrams[d.ID] = d
	return cloneDiagram(d), nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, req UpdateRequest) (*Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diagrams[id]
	if !ok {
		return nil, fmt.Errorf("diagram %d: %w", id, ErrNotFound)
	}
	updated := cloneDiagram(d)
	if err := applyUpdate(updated, req, s.Clock.now()); err != nil {
		return nil, err
	}
	s.diagrams[id] = updated
	return cloneDiagram(updated), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diagrams[id]; !ok {
		return fmt.Errorf("diagram %d: %w", id, ErrNotFound)
	}
	delete(s.diagrams, id)
	return nil
}

// sortByUpdated orders newest first; ties fall back to descending id.
func sortByUpdated(ds []Diagram) {
	sort.SliceStable(ds, func(i, j int) bool {
		if !ds[i].UpdatedAt.Equal(ds[j].UpdatedAt) {
			return ds[i].UpdatedAt.After(ds[j].UpdatedAt)
		}
		return ds[i].ID > ds[j].ID
	})
}
