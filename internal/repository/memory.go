package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
	"github.com/Shivanand-hulikatti/activities-signup/internal/seed"
)

// activityEntry pairs the ordered participant list with a membership set.
type activityEntry struct {
	activity model.Activity
	members  map[string]struct{}
}

// MemoryRepository is the in-process registry. A single RWMutex serialises
// all mutations; reads share the lock.
type MemoryRepository struct {
	mu         sync.RWMutex
	activities map[string]*activityEntry
}

// NewMemoryRepository builds a registry holding copies of the given activities.
func NewMemoryRepository(initial []model.Activity) (*MemoryRepository, error) {
	if err := seed.Validate(initial); err != nil {
		return nil, fmt.Errorf("seed memory registry: %w", err)
	}
	r := &MemoryRepository{activities: make(map[string]*activityEntry, len(initial))}
	for _, a := range initial {
		r.put(a)
	}
	return r, nil
}

func (r *MemoryRepository) put(a model.Activity) {
	a = a.Clone()
	members := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		members[p] = struct{}{}
	}
	r.activities[a.Name] = &activityEntry{activity: a, members: members}
}

// List returns deep copies so callers cannot mutate registry state.
func (r *MemoryRepository) List(_ context.Context) ([]model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Activity, 0, len(r.activities))
	for _, e := range r.activities {
		out = append(out, e.activity.Clone())
	}
	sortByName(out)
	return out, nil
}

// Enroll checks, in order: existence, duplicate email, capacity.
func (r *MemoryRepository) Enroll(_ context.Context, activity, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.activities[activity]
	if !ok {
		return ErrNotFound
	}
	if _, dup := e.members[email]; dup {
		return ErrAlreadyRegistered
	}
	if e.activity.IsFull() {
		return ErrActivityFull
	}
	e.activity.Participants = append(e.activity.Participants, email)
	e.members[email] = struct{}{}
	return nil
}

// Withdraw removes exactly one matching entry and keeps the others in order.
func (r *MemoryRepository) Withdraw(_ context.Context, activity, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.activities[activity]
	if !ok {
		return ErrNotFound
	}
	if _, member := e.members[email]; !member {
		return ErrNotRegistered
	}
	for i, p := range e.activity.Participants {
		if p == email {
			e.activity.Participants = append(e.activity.Participants[:i], e.activity.Participants[i+1:]...)
			break
		}
	}
	delete(e.members, email)
	return nil
}

// Reset replaces the registry contents. Tests use it to restore a fixture.
func (r *MemoryRepository) Reset(activities []model.Activity) error {
	if err := seed.Validate(activities); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = make(map[string]*activityEntry, len(activities))
	for _, a := range activities {
		r.put(a)
	}
	return nil
}
