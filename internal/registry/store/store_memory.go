// Package store persists the approved-minter set and the project assignments.
// Both backends enforce the two cross-record rules atomically: a minter cannot be
// assigned unless approved, and cannot be removed while assigned.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// InMemory is a process-local registry store.
type InMemory struct {
	mu          sync.RWMutex
	approved    map[domain.MinterID]time.Time
	assignments map[domain.ProjectID]models.Assignment
	// assigned counts the projects currently bound to each minter.
	assigned map[domain.MinterID]int
}

func NewInMemory() *InMemory {
	return &InMemory{
		approved:    make(map[domain.MinterID]time.Time),
		assignments: make(map[domain.ProjectID]models.Assignment),
		assigned:    make(map[domain.MinterID]int),
	}
}

// AddApproved inserts m into the approved set. ErrConflict if already present.
func (s *InMemory) AddApproved(_ context.Context, m domain.MinterID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.approved[m]; ok {
		return sentinel.ErrConflict
	}
	s.approved[m] = at
	return nil
}

// RemoveApproved drops m from the approved set. ErrNotFound if m is not approved,
// ErrInvalidState if any project is still assigned to it.
func (s *InMemory) RemoveApproved(_ context.Context, m domain.MinterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.approved[m]; !ok {
		return sentinel.ErrNotFound
	}
	if s.assigned[m] > 0 {
		return sentinel.ErrInvalidState
	}
	delete(s.approved, m)
	return nil
}

func (s *InMemory) IsApproved(_ context.Context, m domain.MinterID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.approved[m]
	return ok, nil
}

// ListApproved returns the approved set ordered by minter address.
func (s *InMemory) ListApproved(_ context.Context) ([]models.ApprovedMinter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ApprovedMinter, 0, len(s.approved))
	for m, at := range s.approved {
		out = append(out, models.ApprovedMinter{Minter: m, ApprovedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minter < out[j].Minter })
	return out, nil
}

// SetAssignment overwrites the project's assignment and returns the minter it
// replaced, or "" when the project was unassigned. ErrNotFound if the new minter
// is not approved.
func (s *InMemory) SetAssignment(_ context.Context, a models.Assignment) (domain.MinterID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.approved[a.Minter]; !ok {
		return "", sentinel.ErrNotFound
	}
	var previous domain.MinterID
	if prev, ok := s.assignments[a.ProjectID]; ok {
		previous = prev.Minter
		s.assigned[prev.Minter]--
		if s.assigned[prev.Minter] <= 0 {
			delete(s.assigned, prev.Minter)
		}
	}
	s.assignments[a.ProjectID] = a
	s.assigned[a.Minter]++
	return previous, nil
}

// GetAssignment returns the live assignment for id. ErrNotFound when unassigned.
func (s *InMemory) GetAssignment(_ context.Context, id domain.ProjectID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

// ListAssignments returns every live assignment ordered by project id.
func (s *InMemory) ListAssignments(_ context.Context) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}
