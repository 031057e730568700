package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, appt Appointment) (Appointment, error)
	Get(ctx context.Context, id int) (Appointment, error)
	GetBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
	Update(ctx context.Context, appt Appointment) (bool, error)
	Delete(ctx context.Context, id int) error

	// Sync surface, used only by the calendar sync engine.
	ListPendingSync(ctx context.Context) ([]Appointment, error)
	ListMirrored(ctx context.Context) ([]Appointment, error)
	SetGoogleEventId(ctx context.Context, id int, eventId string) error
	ClearGoogleEventId(ctx context.Context, id int) error
	MarkSynced(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const appointmentColumns = `id, uid, client_name, start_time, end_time, status, google_event_id, calendar_dirty`

func (r *RepositoryImpl) Create(ctx context.Context, appt Appointment) (Appointment, error) {
	appt.Uid = uuid.NewString()
	appt.CalendarDirty = true

	query := `INSERT INTO appointments (uid, client_name, start_time, end_time, status, calendar_dirty)
				VALUES (?, ?, ?, ?, ?, 1)`
	result, err := r.db.ExecContext(ctx, query,
		appt.Uid, appt.ClientName, appt.StartTime.UnixMilli(), appt.EndTime.UnixMilli(), appt.Status)
	if err != nil {
		err := fmt.Errorf("could not insert appointment: %w", err)
		log.Error(err)
		return Appointment{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Appointment{}, fmt.Errorf("could not read inserted appointment id: %w", err)
	}
	appt.Id = int(id)

	if err := r.replaceAssignments(ctx, appt.Id, appt.StaffIds, appt.OfferingIds); err != nil {
		return Appointment{}, err
	}

	return r.Get(ctx, appt.Id)
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	appt, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Appointment{}, ErrAppointmentNotFound
	} else if err != nil {
		log.Errorf("failed to get appointment %d: %v", id, err)
		return Appointment{}, err
	}
	if err := r.loadAssignments(ctx, &appt); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

func (r *RepositoryImpl) GetBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
				WHERE start_time <= ? AND end_time >= ?
				ORDER BY start_time`
	return r.queryAppointments(ctx, query, to.UnixMilli(), from.UnixMilli())
}

func (r *RepositoryImpl) Update(ctx context.Context, appt Appointment) (bool, error) {
	query := `UPDATE appointments SET client_name = ?, start_time = ?, end_time = ?, status = ?, calendar_dirty = 1
				WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		appt.ClientName, appt.StartTime.UnixMilli(), appt.EndTime.UnixMilli(), appt.Status, appt.Id)
	if err != nil {
		err := fmt.Errorf("could not update appointment: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if err := r.replaceAssignments(ctx, appt.Id, appt.StaffIds, appt.OfferingIds); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		err := fmt.Errorf("could not delete appointment: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ListPendingSync(ctx context.Context) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
				WHERE google_event_id IS NULL OR calendar_dirty = 1
				ORDER BY start_time`
	return r.queryAppointments(ctx, query)
}

func (r *RepositoryImpl) ListMirrored(ctx context.Context) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
				WHERE google_event_id IS NOT NULL
				ORDER BY start_time`
	return r.queryAppointments(ctx, query)
}

func (r *RepositoryImpl) SetGoogleEventId(ctx context.Context, id int, eventId string) error {
	query := `UPDATE appointments SET google_event_id = ?, calendar_dirty = 0 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, eventId, id); err != nil {
		err := fmt.Errorf("could not set google event id: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ClearGoogleEventId(ctx context.Context, id int) error {
	// Marking dirty makes the next push cycle recreate the remote event.
	query := `UPDATE appointments SET google_event_id = NULL, calendar_dirty = 1 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		err := fmt.Errorf("could not clear google event id: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) MarkSynced(ctx context.Context, id int) error {
	query := `UPDATE appointments SET calendar_dirty = 0 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		err := fmt.Errorf("could not mark appointment as synced: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) queryAppointments(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query appointments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	appointments := make([]Appointment, 0, 10)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range appointments {
		if err := r.loadAssignments(ctx, &appointments[i]); err != nil {
			return nil, err
		}
	}
	return appointments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (Appointment, error) {
	var appt Appointment
	var startMillis, endMillis int64
	var googleEventId sql.NullString
	err := row.Scan(&appt.Id, &appt.Uid, &appt.ClientName, &startMillis, &endMillis,
		&appt.Status, &googleEventId, &appt.CalendarDirty)
	if err != nil {
		return Appointment{}, err
	}
	appt.StartTime = time.UnixMilli(startMillis)
	appt.EndTime = time.UnixMilli(endMillis)
	if googleEventId.Valid {
		appt.GoogleEventId = googleEventId.String
	}
	return appt, nil
}

func (r *RepositoryImpl) loadAssignments(ctx context.Context, appt *Appointment) error {
	staffQuery := `SELECT s.id, s.name FROM appointment_staff a JOIN staff s ON s.id = a.staff_id
					WHERE a.appointment_id = ? ORDER BY s.name`
	rows, err := r.db.QueryContext(ctx, staffQuery, appt.Id)
	if err != nil {
		return fmt.Errorf("could not query appointment staff: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("could not scan staff row: %w", err)
		}
		appt.StaffIds = append(appt.StaffIds, id)
		appt.StaffNames = append(appt.StaffNames, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	offeringQuery := `SELECT o.id, o.name FROM appointment_offerings a JOIN offerings o ON o.id = a.offering_id
						WHERE a.appointment_id = ? ORDER BY o.name`
	oRows, err := r.db.QueryContext(ctx, offeringQuery, appt.Id)
	if err != nil {
		return fmt.Errorf("could not query appointment offerings: %w", err)
	}
	defer oRows.Close()
	for oRows.Next() {
		var id int
		var name string
		if err := oRows.Scan(&id, &name); err != nil {
			return fmt.Errorf("could not scan offering row: %w", err)
		}
		appt.OfferingIds = append(appt.OfferingIds, id)
		appt.OfferingNames = append(appt.OfferingNames, name)
	}
	return oRows.Err()
}

func (r *RepositoryImpl) replaceAssignments(ctx context.Context, apptId int, staffIds, offeringIds []int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointment_staff WHERE appointment_id = ?`, apptId); err != nil {
		return fmt.Errorf("could not clear staff assignments: %w", err)
	}
	for _, staffId := range staffIds {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO appointment_staff (appointment_id, staff_id) VALUES (?, ?)`, apptId, staffId); err != nil {
			return fmt.Errorf("could not assign staff %d: %w", staffId, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointment_offerings WHERE appointment_id = ?`, apptId); err != nil {
		return fmt.Errorf("could not clear offering assignments: %w", err)
	}
	for _, offeringId := range offeringIds {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO appointment_offerings (appointment_id, offering_id) VALUES (?, ?)`, apptId, offeringId); err != nil {
			return fmt.Errorf("could not assign offering %d: %w", offeringId, err)
		}
	}
	return nil
}
