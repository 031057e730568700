package sync

import (
	"context"
	gosync "sync"
	"time"
)

type mappingRecord struct {
	kind          string
	appointmentId int
	event         ImportedEvent
}

// MappingStoreStub is an in-memory MappingStore for tests.
type MappingStoreStub struct {
	mu      gosync.RWMutex
	records map[string]mappingRecord
}

func NewMappingStoreStub() *MappingStoreStub {
	return &MappingStoreStub{records: make(map[string]mappingRecord)}
}

func (s *MappingStoreStub) IsKnownRemoteId(_ context.Context, remoteEventId string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[remoteEventId]
	return ok, nil
}

func (s *MappingStoreStub) AllKnownRemoteIds(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{}, len(s.records))
	for id := range s.records {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *MappingStoreStub) RecordAppointmentMapping(_ context.Context, remoteEventId string, appointmentId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[remoteEventId] = mappingRecord{kind: kindAppointment, appointmentId: appointmentId}
	return nil
}

func (s *MappingStoreStub) RemoveAppointmentMapping(_ context.Context, remoteEventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[remoteEventId]; ok && record.kind == kindAppointment {
		delete(s.records, remoteEventId)
	}
	return nil
}

func (s *MappingStoreStub) RecordImportedEvent(_ context.Context, event ImportedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[event.RemoteEventId]; ok {
		return nil
	}
	s.records[event.RemoteEventId] = mappingRecord{kind: kindImported, event: event}
	return nil
}

func (s *MappingStoreStub) ListImportedEvents(_ context.Context, from, to time.Time) ([]ImportedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]ImportedEvent, 0)
	for _, record := range s.records {
		if record.kind != kindImported {
			continue
		}
		if record.event.StartTime.Before(from) || !record.event.StartTime.Before(to) {
			continue
		}
		events = append(events, record.event)
	}
	sortImportedEventsByStartTime(events)
	return events, nil
}

func (s *MappingStoreStub) RemoveImportedEvent(_ context.Context, remoteEventId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[remoteEventId]; ok && record.kind == kindImported {
		delete(s.records, remoteEventId)
	}
	return nil
}

func sortImportedEventsByStartTime(events []ImportedEvent) {
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[j].StartTime.Before(events[i].StartTime) {
				events[i], events[j] = events[j], events[i]
			}
		}
	}
}
