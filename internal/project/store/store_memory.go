package store

import (
	"context"
	"sort"
	"sync"

	"mintgate/internal/project/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// InMemory is a process-local project store. Every method returns copies so callers
// never observe a record mid-mutation.
type InMemory struct {
	mu       sync.RWMutex
	projects map[domain.ProjectID]*models.Project
}

func NewInMemory() *InMemory {
	return &InMemory{projects: make(map[domain.ProjectID]*models.Project)}
}

func (s *InMemory) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.projects[p.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

// NextID returns one past the highest id in use, or start for an empty store.
func (s *InMemory) NextID(_ context.Context, start domain.ProjectID) (domain.ProjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := start
	for id := range s.projects {
		if id >= next {
			next = id + 1
		}
	}
	return next, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Execute runs validate then mutate under the store lock. When validate fails
// the record is left untouched.
func (s *InMemory) Execute(_ context.Context, id domain.ProjectID, validate func(*models.Project) error, mutate func(*models.Project)) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	work := *p
	if validate != nil {
		if err := validate(&work); err != nil {
			return nil, err
		}
	}
	mutate(&work)
	s.projects[id] = &work
	cp := work
	return &cp, nil
}

// IncrementInvocations consumes one slot if current < max and returns the
// zero-based index of the consumed slot. At the cap it returns ErrInvalidState.
func (s *InMemory) IncrementInvocations(_ context.Context, id domain.ProjectID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if p.CurrentInvocations >= p.MaxInvocations {
		return 0, sentinel.ErrInvalidState
	}
	index := p.CurrentInvocations
	p.CurrentInvocations++
	return index, nil
}
