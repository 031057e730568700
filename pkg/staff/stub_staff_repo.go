package staff

import (
	"context"
	"sync"
)

type StubStaffRepo struct {
	mu     sync.RWMutex
	items  map[int]Staff
	nextId int
}

func NewStubStaffRepo() *StubStaffRepo {
	return &StubStaffRepo{items: make(map[int]Staff), nextId: 1}
}

func (r *StubStaffRepo) Create(ctx context.Context, member Staff) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.Id = r.nextId
	r.items[member.Id] = member
	r.nextId++
	return member.Id, nil
}

func (r *StubStaffRepo) Get(ctx context.Context, id int) (Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.items[id]
	if !ok {
		return Staff{}, ErrStaffNotFound
	}
	return member, nil
}

func (r *StubStaffRepo) GetAll(ctx context.Context, includeInactive bool) ([]Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Staff, 0, len(r.items))
	for _, member := range r.items {
		if includeInactive || member.Active {
			result = append(result, member)
		}
	}
	return result, nil
}

func (r *StubStaffRepo) Update(ctx context.Context, member Staff) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[member.Id]; !ok {
		return false, nil
	}
	r.items[member.Id] = member
	return true, nil
}

func (r *StubStaffRepo) Deactivate(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.items[id]
	if !ok {
		return false, nil
	}
	member.Active = false
	r.items[id] = member
	return true, nil
}
