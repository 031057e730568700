package appointment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tressly/tressly/internal/test_utils"
)

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, *sql.DB, context.Context) {
	db := test_utils.SetupTestDB(t)
	return NewRepository(db), db, context.Background()
}

func newTestAppointment(clientName string, start time.Time) Appointment {
	return Appointment{
		ClientName: clientName,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     StatusScheduled,
	}
}

func TestRepositoryImpl_CreateAndGet(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	created, err := repository.Create(ctx, newTestAppointment("Maria Lopez", start))

	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.NotEmpty(t, created.Uid)
	assert.True(t, created.CalendarDirty)
	assert.False(t, created.Mirrored())

	fetched, err := repository.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", fetched.ClientName)
	assert.Equal(t, start.UnixMilli(), fetched.StartTime.UnixMilli())
	assert.Equal(t, StatusScheduled, fetched.Status)
}

func TestRepositoryImpl_GetNotFound(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)

	_, err := repository.Get(ctx, 12345)

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepositoryImpl_CreateWithAssignments(t *testing.T) {
	repository, db, ctx := setupRepositoryTest(t)
	_, err := db.Exec(`INSERT INTO staff (name, role, active) VALUES ('Carla', 'Stylist', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO offerings (name, duration_minutes, price_cents, active) VALUES ('Haircut', 45, 3500, 1)`)
	require.NoError(t, err)

	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	appt := newTestAppointment("Maria Lopez", start)
	appt.StaffIds = []int{1}
	appt.OfferingIds = []int{1}

	created, err := repository.Create(ctx, appt)

	require.NoError(t, err)
	assert.Equal(t, []int{1}, created.StaffIds)
	assert.Equal(t, []string{"Carla"}, created.StaffNames)
	assert.Equal(t, []int{1}, created.OfferingIds)
	assert.Equal(t, []string{"Haircut"}, created.OfferingNames)
}

func TestRepositoryImpl_GetBetween(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	_, err := repository.Create(ctx, newTestAppointment("Inside", base))
	require.NoError(t, err)
	_, err = repository.Create(ctx, newTestAppointment("Outside", base.Add(72*time.Hour)))
	require.NoError(t, err)

	appointments, err := repository.GetBetween(ctx, base.Add(-time.Hour), base.Add(2*time.Hour))

	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Inside", appointments[0].ClientName)
}

func TestRepositoryImpl_UpdateMarksDirty(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	created, err := repository.Create(ctx, newTestAppointment("Maria Lopez", start))
	require.NoError(t, err)
	require.NoError(t, repository.SetGoogleEventId(ctx, created.Id, "evt-1"))

	created.ClientName = "Maria Lopez-Garcia"
	ok, err := repository.Update(ctx, created)

	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := repository.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez-Garcia", updated.ClientName)
	assert.True(t, updated.CalendarDirty)
	// The remote link survives the update.
	assert.Equal(t, "evt-1", updated.GoogleEventId)
}

func TestRepositoryImpl_UpdateMissingAppointment(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	appt := newTestAppointment("Nobody", time.Now())
	appt.Id = 999

	ok, err := repository.Update(ctx, appt)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryImpl_Delete(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	created, err := repository.Create(ctx, newTestAppointment("Maria Lopez", time.Now()))
	require.NoError(t, err)

	require.NoError(t, repository.Delete(ctx, created.Id))

	_, err = repository.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepositoryImpl_ListPendingSync(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	unmirrored, err := repository.Create(ctx, newTestAppointment("New", base))
	require.NoError(t, err)
	synced, err := repository.Create(ctx, newTestAppointment("Synced", base.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repository.SetGoogleEventId(ctx, synced.Id, "evt-1"))
	dirty, err := repository.Create(ctx, newTestAppointment("Dirty", base.Add(2*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repository.SetGoogleEventId(ctx, dirty.Id, "evt-2"))
	fetchedDirty, err := repository.Get(ctx, dirty.Id)
	require.NoError(t, err)
	ok, err := repository.Update(ctx, fetchedDirty)
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := repository.ListPendingSync(ctx)

	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, unmirrored.Id, pending[0].Id)
	assert.Equal(t, dirty.Id, pending[1].Id)
}

func TestRepositoryImpl_ListMirrored(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	base := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	_, err := repository.Create(ctx, newTestAppointment("Unmirrored", base))
	require.NoError(t, err)
	mirrored, err := repository.Create(ctx, newTestAppointment("Mirrored", base.Add(time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repository.SetGoogleEventId(ctx, mirrored.Id, "evt-1"))

	result, err := repository.ListMirrored(ctx)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, mirrored.Id, result[0].Id)
	assert.Equal(t, "evt-1", result[0].GoogleEventId)
}

func TestRepositoryImpl_SetAndClearGoogleEventId(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	created, err := repository.Create(ctx, newTestAppointment("Maria Lopez", time.Now()))
	require.NoError(t, err)

	require.NoError(t, repository.SetGoogleEventId(ctx, created.Id, "evt-1"))
	linked, err := repository.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", linked.GoogleEventId)
	assert.False(t, linked.CalendarDirty)

	require.NoError(t, repository.ClearGoogleEventId(ctx, created.Id))
	unlinked, err := repository.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Empty(t, unlinked.GoogleEventId)
	// Dirty again, so the next push cycle recreates the remote event.
	assert.True(t, unlinked.CalendarDirty)
}

func TestRepositoryImpl_MarkSynced(t *testing.T) {
	repository, _, ctx := setupRepositoryTest(t)
	created, err := repository.Create(ctx, newTestAppointment("Maria Lopez", time.Now()))
	require.NoError(t, err)

	require.NoError(t, repository.MarkSynced(ctx, created.Id))

	synced, err := repository.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, synced.CalendarDirty)
}
