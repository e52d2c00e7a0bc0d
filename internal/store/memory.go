package store

import (
	"context"
	"sort"
	"sync"

	"golinks/internal/model"
)

// MemoryStore is an in-process LinkStore for unit tests. It keeps the same
// contract as GormStore but cannot provide cross-process uniqueness, so it
// must never back a production deployment.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[string]model.Link
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{links: make(map[string]model.Link)}
}

var _ LinkStore = (*MemoryStore)(nil)

func (s *MemoryStore) TryCreate(_ context.Context, link *model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[link.Code]; ok {
		return ErrCodeTaken
	}
	s.links[link.Code] = *link
	return nil
}

func (s *MemoryStore) Get(_ context.Context, code string) (*model.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &link, nil
}

func (s *MemoryStore) IncrementClicks(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[code]
	if !ok {
		return ErrNotFound
	}
	link.Clicks++
	s.links[code] = link
	return nil
}

func (s *MemoryStore) Top(_ context.Context, n int) ([]model.Link, error) {
	if n <= 0 {
		n = DefaultTopN
	}

	s.mu.RLock()
	links := make([]model.Link, 0, len(s.links))
	for _, l := range s.links {
		links = append(links, l)
	}
	s.mu.RUnlock()

	sort.Slice(links, func(i, j int) bool {
		if links[i].Clicks != links[j].Clicks {
			return links[i].Clicks > links[j].Clicks
		}
		return links[i].Code < links[j].Code
	})

	if len(links) > n {
		links = links[:n]
	}
	return links, nil
}

// Len reports the number of stored links. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}
