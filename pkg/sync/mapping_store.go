package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	kindAppointment = "APPOINTMENT"
	kindImported    = "IMPORTED"
)

// ImportedEvent is a remote calendar event with no local appointment behind
// it, pulled in so the booking view shows the slot as taken.
type ImportedEvent struct {
	RemoteEventId string
	Summary       string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
	ImportedAt    time.Time
}

// MappingStore tracks which remote event ids this installation already knows
// about, in both directions: events we created for appointments and foreign
// events we imported.
type MappingStore interface {
	IsKnownRemoteId(ctx context.Context, remoteEventId string) (bool, error)
	// AllKnownRemoteIds returns every tracked remote id regardless of kind.
	AllKnownRemoteIds(ctx context.Context) (map[string]struct{}, error)

	RecordAppointmentMapping(ctx context.Context, remoteEventId string, appointmentId int) error
	RemoveAppointmentMapping(ctx context.Context, remoteEventId string) error

	RecordImportedEvent(ctx context.Context, event ImportedEvent) error
	ListImportedEvents(ctx context.Context, from, to time.Time) ([]ImportedEvent, error)
	RemoveImportedEvent(ctx context.Context, remoteEventId string) error
}

type SQLMappingStore struct {
	db *sql.DB
}

func NewSQLMappingStore(db *sql.DB) *SQLMappingStore {
	return &SQLMappingStore{db: db}
}

func (s *SQLMappingStore) IsKnownRemoteId(ctx context.Context, remoteEventId string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM calendar_mapping WHERE remote_event_id = ?", remoteEventId).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("could not look up remote event id: %w", err)
	}
	return count > 0, nil
}

func (s *SQLMappingStore) AllKnownRemoteIds(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT remote_event_id FROM calendar_mapping")
	if err != nil {
		return nil, fmt.Errorf("could not list known remote event ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (s *SQLMappingStore) RecordAppointmentMapping(ctx context.Context, remoteEventId string, appointmentId int) error {
	query := `INSERT INTO calendar_mapping (remote_event_id, kind, appointment_id) VALUES (?, ?, ?)
				ON CONFLICT (remote_event_id) DO UPDATE SET kind = ?, appointment_id = ?`
	_, err := s.db.ExecContext(ctx, query,
		remoteEventId, kindAppointment, appointmentId, kindAppointment, appointmentId)
	if err != nil {
		return fmt.Errorf("could not record appointment mapping: %w", err)
	}
	return nil
}

func (s *SQLMappingStore) RemoveAppointmentMapping(ctx context.Context, remoteEventId string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_mapping WHERE remote_event_id = ? AND kind = ?",
		remoteEventId, kindAppointment)
	if err != nil {
		return fmt.Errorf("could not remove appointment mapping: %w", err)
	}
	return nil
}

func (s *SQLMappingStore) RecordImportedEvent(ctx context.Context, event ImportedEvent) error {
	query := `INSERT INTO calendar_mapping
				(remote_event_id, kind, summary, description, start_time, end_time, imported_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (remote_event_id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query,
		event.RemoteEventId, kindImported, event.Summary, event.Description,
		event.StartTime.UnixMilli(), event.EndTime.UnixMilli(), event.ImportedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("could not record imported event: %w", err)
	}
	return nil
}

func (s *SQLMappingStore) ListImportedEvents(ctx context.Context, from, to time.Time) ([]ImportedEvent, error) {
	query := `SELECT remote_event_id, summary, description, start_time, end_time, imported_at
				FROM calendar_mapping
				WHERE kind = ? AND start_time >= ? AND start_time < ?
				ORDER BY start_time`
	rows, err := s.db.QueryContext(ctx, query, kindImported, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		log.Errorf("failed to list imported events: %v", err)
		return nil, fmt.Errorf("could not list imported events: %w", err)
	}
	defer rows.Close()

	events := make([]ImportedEvent, 0)
	for rows.Next() {
		var event ImportedEvent
		var summary, description sql.NullString
		var startMillis, endMillis, importedMillis sql.NullInt64
		if err := rows.Scan(&event.RemoteEventId, &summary, &description,
			&startMillis, &endMillis, &importedMillis); err != nil {
			return nil, err
		}
		event.Summary = summary.String
		event.Description = description.String
		event.StartTime = time.UnixMilli(startMillis.Int64)
		event.EndTime = time.UnixMilli(endMillis.Int64)
		event.ImportedAt = time.UnixMilli(importedMillis.Int64)
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *SQLMappingStore) RemoveImportedEvent(ctx context.Context, remoteEventId string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_mapping WHERE remote_event_id = ? AND kind = ?",
		remoteEventId, kindImported)
	if err != nil {
		return fmt.Errorf("could not remove imported event: %w", err)
	}
	return nil
}
