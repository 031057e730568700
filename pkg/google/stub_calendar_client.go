package google

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CalendarClientStub is an in-memory CalendarClient for tests. Errors can be
// injected per operation to simulate remote failures.
type CalendarClientStub struct {
	mu     sync.Mutex
	events map[string]RemoteEvent
	nextId int

	CreateErr  error
	UpdateErrs map[string]error
	DeleteErrs map[string]error
	ListErr    error

	CreateCalls int
	UpdateCalls int
	DeleteCalls int
	ListCalls   int
}

func NewCalendarClientStub() *CalendarClientStub {
	return &CalendarClientStub{
		events:     make(map[string]RemoteEvent),
		UpdateErrs: make(map[string]error),
		DeleteErrs: make(map[string]error),
	}
}

func (s *CalendarClientStub) CreateEvent(_ context.Context, spec EventSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	s.nextId++
	id := fmt.Sprintf("evt-%d", s.nextId)
	s.events[id] = RemoteEvent{
		Id:          id,
		Summary:     spec.Summary,
		Description: spec.Description,
		StartTime:   spec.StartTime,
		EndTime:     spec.EndTime,
	}
	return id, nil
}

func (s *CalendarClientStub) UpdateEvent(_ context.Context, eventId string, spec EventSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if err, ok := s.UpdateErrs[eventId]; ok {
		return err
	}
	if _, ok := s.events[eventId]; !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventId)
	}
	s.events[eventId] = RemoteEvent{
		Id:          eventId,
		Summary:     spec.Summary,
		Description: spec.Description,
		StartTime:   spec.StartTime,
		EndTime:     spec.EndTime,
	}
	return nil
}

func (s *CalendarClientStub) DeleteEvent(_ context.Context, eventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if err, ok := s.DeleteErrs[eventId]; ok {
		return err
	}
	// A missing event is not an error: the desired state already holds.
	delete(s.events, eventId)
	return nil
}

func (s *CalendarClientStub) ListEvents(_ context.Context, from time.Time, to time.Time) ([]RemoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	events := make([]RemoteEvent, 0)
	for _, event := range s.events {
		if event.StartTime.Before(from) || !event.StartTime.Before(to) {
			continue
		}
		events = append(events, event)
	}
	sortRemoteEventsByStartTime(events)
	return events, nil
}

// Seed places an event in the fake calendar without counting as a call.
func (s *CalendarClientStub) Seed(event RemoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Id] = event
}

// Remove deletes an event without counting as a call, simulating a user
// removing it from their calendar directly.
func (s *CalendarClientStub) Remove(eventId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, eventId)
}

// Event returns the stored event and whether it exists.
func (s *CalendarClientStub) Event(eventId string) (RemoteEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventId]
	return event, ok
}

func (s *CalendarClientStub) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func sortRemoteEventsByStartTime(events []RemoteEvent) {
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[j].StartTime.Before(events[i].StartTime) {
				events[i], events[j] = events[j], events[i]
			}
		}
	}
}
