package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tressly/tressly/internal/event_bus"
	"github.com/tressly/tressly/internal/utils"
	"github.com/tressly/tressly/pkg/appointment"
	"github.com/tressly/tressly/pkg/google"
)

// ErrSyncInProgress is returned when a cycle is requested while another one is
// still running. The caller should simply wait for the running cycle.
var ErrSyncInProgress = errors.New("calendar sync already in progress")

// Result reports what a single sync cycle did. Per-item failures are counted,
// not raised; only a total inability to reach the calendar aborts a cycle.
type Result struct {
	Pushed              int `json:"pushed"`
	PushErrors          int `json:"pushErrors"`
	Imported            int `json:"imported"`
	Skipped             int `json:"skipped"`
	ImportErrors        int `json:"importErrors"`
	DeletedImported     int `json:"deletedImported"`
	DeletedAppointments int `json:"deletedAppointments"`
}

// Engine runs the bidirectional synchronization cycle between the local
// appointment book and the remote Google calendar: push local changes out,
// import foreign events, then reconcile remote deletions.
type Engine struct {
	appointments appointment.Repository
	mappings     MappingStore
	client       google.CalendarClient
	bus          *event_bus.EventBus
	clock        utils.Clock
	windowDays   int

	running atomic.Bool
}

func NewEngine(
	appointments appointment.Repository,
	mappings MappingStore,
	client google.CalendarClient,
	bus *event_bus.EventBus,
	clock utils.Clock,
	windowDays int,
) *Engine {
	return &Engine{
		appointments: appointments,
		mappings:     mappings,
		client:       client,
		bus:          bus,
		clock:        clock,
		windowDays:   windowDays,
	}
}

// RunFullSync executes one push → import → reconcile cycle. Only one cycle
// runs at a time; a concurrent call returns ErrSyncInProgress without doing
// any work. Auth failures and unreachable-calendar errors abort the cycle.
func (e *Engine) RunFullSync(ctx context.Context) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	log.Debug("Starting calendar sync cycle")
	var result Result

	if err := e.pushPhase(ctx, &result); err != nil {
		return result, err
	}

	// One wide listing serves both the import and the reconciliation phase.
	from, to := e.window()
	remoteEvents, err := e.client.ListEvents(ctx, from, to)
	if err != nil {
		return result, fmt.Errorf("calendar listing failed: %w", err)
	}

	if err := e.importPhase(ctx, remoteEvents, &result); err != nil {
		return result, err
	}
	if err := e.reconcilePhase(ctx, remoteEvents, from, to, &result); err != nil {
		return result, err
	}

	log.Infof("Calendar sync finished: %+v", result)
	if err := e.bus.Publish(event_bus.NewEvent(ctx, event_bus.SyncCompleted, result)); err != nil {
		log.Errorf("failed to publish sync completion: %v", err)
	}
	return result, nil
}

// window is the time range the cycle operates on. Appointments and imported
// events outside it are never touched by reconciliation.
func (e *Engine) window() (time.Time, time.Time) {
	now := e.clock.Now()
	return now.AddDate(0, 0, -1), now.AddDate(0, 0, e.windowDays)
}

// pushPhase mirrors local pending appointments to the calendar: creates
// events for new appointments, updates events for dirty ones. An update
// hitting a vanished event unlinks the appointment so the next cycle
// recreates it.
func (e *Engine) pushPhase(ctx context.Context, result *Result) error {
	pending, err := e.appointments.ListPendingSync(ctx)
	if err != nil {
		return fmt.Errorf("could not list appointments pending sync: %w", err)
	}

	for _, appt := range pending {
		if err := e.pushOne(ctx, appt); err != nil {
			if isAuthError(err) {
				return err
			}
			log.Warnf("failed to push appointment %d: %v", appt.Id, err)
			result.PushErrors++
			continue
		}
		result.Pushed++
	}
	return nil
}

func (e *Engine) pushOne(ctx context.Context, appt appointment.Appointment) error {
	spec := e.toEventSpec(appt)

	if !appt.Mirrored() {
		eventId, err := e.client.CreateEvent(ctx, spec)
		if err != nil {
			return err
		}
		if err := e.appointments.SetGoogleEventId(ctx, appt.Id, eventId); err != nil {
			return err
		}
		return e.mappings.RecordAppointmentMapping(ctx, eventId, appt.Id)
	}

	err := e.client.UpdateEvent(ctx, appt.GoogleEventId, spec)
	if errors.Is(err, google.ErrEventNotFound) {
		// The mirror vanished remotely between cycles. Unlink so the next
		// cycle recreates the event rather than retrying a dead id.
		log.Infof("remote event %s for appointment %d is gone, unlinking", appt.GoogleEventId, appt.Id)
		if clearErr := e.appointments.ClearGoogleEventId(ctx, appt.Id); clearErr != nil {
			return clearErr
		}
		return e.mappings.RemoveAppointmentMapping(ctx, appt.GoogleEventId)
	}
	if err != nil {
		return err
	}
	return e.appointments.MarkSynced(ctx, appt.Id)
}

// importPhase records foreign remote events so the booking view shows their
// slots as taken. Events already known (either direction) are not re-imported.
func (e *Engine) importPhase(ctx context.Context, remoteEvents []google.RemoteEvent, result *Result) error {
	knownIds, err := e.mappings.AllKnownRemoteIds(ctx)
	if err != nil {
		return fmt.Errorf("could not load known remote event ids: %w", err)
	}

	for _, remote := range remoteEvents {
		if remote.Id == "" || remote.StartTime.IsZero() {
			// Cannot be represented locally; not an error.
			result.Skipped++
			continue
		}
		if _, known := knownIds[remote.Id]; known {
			continue
		}
		err := e.mappings.RecordImportedEvent(ctx, ImportedEvent{
			RemoteEventId: remote.Id,
			Summary:       remote.Summary,
			Description:   remote.Description,
			StartTime:     remote.StartTime,
			EndTime:       remote.EndTime,
			ImportedAt:    e.clock.Now(),
		})
		if err != nil {
			log.Warnf("failed to import remote event %s: %v", remote.Id, err)
			result.ImportErrors++
			continue
		}
		result.Imported++
	}
	return nil
}

// reconcilePhase propagates remote deletions. Imported events that vanished
// remotely are dropped; mirrored appointments whose event vanished are
// deleted locally, since once mirrored their authoritative existence follows
// the calendar. Only records starting inside the listed window are
// considered, so a narrow listing can never wipe out-of-window records.
func (e *Engine) reconcilePhase(ctx context.Context, remoteEvents []google.RemoteEvent, from, to time.Time, result *Result) error {
	remoteIds := make(map[string]struct{}, len(remoteEvents))
	for _, remote := range remoteEvents {
		remoteIds[remote.Id] = struct{}{}
	}

	imported, err := e.mappings.ListImportedEvents(ctx, from, to)
	if err != nil {
		return err
	}
	for _, event := range imported {
		if _, present := remoteIds[event.RemoteEventId]; present {
			continue
		}
		if err := e.mappings.RemoveImportedEvent(ctx, event.RemoteEventId); err != nil {
			log.Warnf("failed to remove imported event %s: %v", event.RemoteEventId, err)
			continue
		}
		result.DeletedImported++
	}

	mirrored, err := e.appointments.ListMirrored(ctx)
	if err != nil {
		return fmt.Errorf("could not list mirrored appointments: %w", err)
	}
	for _, appt := range mirrored {
		if appt.StartTime.Before(from) || !appt.StartTime.Before(to) {
			continue
		}
		if _, present := remoteIds[appt.GoogleEventId]; present {
			continue
		}
		log.Infof("remote event %s deleted, deleting appointment %d", appt.GoogleEventId, appt.Id)
		if err := e.appointments.Delete(ctx, appt.Id); err != nil {
			log.Warnf("failed to delete appointment %d: %v", appt.Id, err)
			continue
		}
		if err := e.mappings.RemoveAppointmentMapping(ctx, appt.GoogleEventId); err != nil {
			log.Warnf("failed to remove mapping for event %s: %v", appt.GoogleEventId, err)
		}
		result.DeletedAppointments++
	}
	return nil
}

// OnAppointmentDeleted removes the remote mirror of a locally deleted
// appointment. Local deletions propagate by this direct call rather than by
// the polling cycle.
func (e *Engine) OnAppointmentDeleted(ctx context.Context, data event_bus.AppointmentDeletedData) error {
	if data.GoogleEventId == "" {
		return nil
	}
	err := e.client.DeleteEvent(ctx, data.GoogleEventId)
	if err != nil {
		if errors.Is(err, google.ErrUnauthenticated) {
			// Not connected; nothing to clean up remotely.
			return e.mappings.RemoveAppointmentMapping(ctx, data.GoogleEventId)
		}
		return fmt.Errorf("could not delete remote event %s: %w", data.GoogleEventId, err)
	}
	return e.mappings.RemoveAppointmentMapping(ctx, data.GoogleEventId)
}

func (e *Engine) toEventSpec(appt appointment.Appointment) google.EventSpec {
	summary := appt.ClientName
	if len(appt.OfferingNames) > 0 {
		summary = fmt.Sprintf("%s - %s", appt.ClientName, strings.Join(appt.OfferingNames, ", "))
	}
	description := ""
	if len(appt.StaffNames) > 0 {
		description = "Staff: " + strings.Join(appt.StaffNames, ", ")
	}
	return google.EventSpec{
		Summary:     summary,
		Description: description,
		StartTime:   appt.StartTime,
		EndTime:     appt.EndTime,
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, google.ErrUnauthenticated) ||
		errors.Is(err, google.ErrAuthExpired) ||
		errors.Is(err, google.ErrAuthRefresh)
}
