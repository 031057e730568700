package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	items  map[int]Appointment
	nextId int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{items: make(map[int]Appointment), nextId: 1}
}

func (r *RepositoryStub) Create(ctx context.Context, appt Appointment) (Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt.Id = r.nextId
	appt.Uid = fmt.Sprintf("appt-%d", r.nextId)
	appt.CalendarDirty = true
	r.items[appt.Id] = appt
	r.nextId++
	return appt, nil
}

func (r *RepositoryStub) Get(ctx context.Context, id int) (Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	return appt, nil
}

func (r *RepositoryStub) GetBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Appointment
	for _, appt := range r.items {
		if !appt.StartTime.After(to) && !appt.EndTime.Before(from) {
			result = append(result, appt)
		}
	}
	sortByStartTime(result)
	return result, nil
}

func (r *RepositoryStub) Update(ctx context.Context, appt Appointment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[appt.Id]
	if !ok {
		return false, nil
	}
	appt.Uid = existing.Uid
	appt.GoogleEventId = existing.GoogleEventId
	appt.CalendarDirty = true
	r.items[appt.Id] = appt
	return true, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *RepositoryStub) ListPendingSync(ctx context.Context) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Appointment
	for _, appt := range r.items {
		if appt.GoogleEventId == "" || appt.CalendarDirty {
			result = append(result, appt)
		}
	}
	sortByStartTime(result)
	return result, nil
}

func (r *RepositoryStub) ListMirrored(ctx context.Context) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Appointment
	for _, appt := range r.items {
		if appt.GoogleEventId != "" {
			result = append(result, appt)
		}
	}
	sortByStartTime(result)
	return result, nil
}

func (r *RepositoryStub) SetGoogleEventId(ctx context.Context, id int, eventId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.GoogleEventId = eventId
	appt.CalendarDirty = false
	r.items[id] = appt
	return nil
}

func (r *RepositoryStub) ClearGoogleEventId(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.GoogleEventId = ""
	appt.CalendarDirty = true
	r.items[id] = appt
	return nil
}

func (r *RepositoryStub) MarkSynced(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.CalendarDirty = false
	r.items[id] = appt
	return nil
}

func sortByStartTime(appointments []Appointment) {
	for i := 0; i < len(appointments); i++ {
		for j := i + 1; j < len(appointments); j++ {
			if appointments[i].StartTime.After(appointments[j].StartTime) {
				appointments[i], appointments[j] = appointments[j], appointments[i]
			}
		}
	}
}
