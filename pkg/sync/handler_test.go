package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tressly/tressly/internal/config"
	"github.com/tressly/tressly/internal/event_bus"
	"github.com/tressly/tressly/internal/utils"
	"github.com/tressly/tressly/pkg/appointment"
	"github.com/tressly/tressly/pkg/google"
	"golang.org/x/oauth2"
)

type handlerFixture struct {
	handler *Handler
	store   *google.MemoryTokenStore
	client  *google.CalendarClientStub
	clock   *utils.MockClock
	bus     *event_bus.EventBus
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	store := google.NewMemoryTokenStore()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	tokens := google.NewTokenManager(store, config.Application{}, clock)
	client := google.NewCalendarClientStub()
	mappings := NewMappingStoreStub()
	bus := event_bus.NewEventBus()
	engine := NewEngine(appointment.NewRepositoryStub(), mappings, client, bus, clock, 30)
	return &handlerFixture{
		handler: NewHandler(engine, tokens, mappings, bus),
		store:   store,
		client:  client,
		clock:   clock,
		bus:     bus,
	}
}

func TestHandler_RunSyncReturnsCounts(t *testing.T) {
	f := newHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sync/run", nil)
	recorder := httptest.NewRecorder()

	f.handler.RunSync(recorder, req)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	var result Result
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&result))
	assert.Equal(t, Result{}, result)
}

func TestHandler_RunSyncWhenDisconnected(t *testing.T) {
	f := newHandlerFixture(t)
	f.client.ListErr = google.ErrUnauthenticated
	req := httptest.NewRequest(http.MethodPost, "/api/sync/run", nil)
	recorder := httptest.NewRecorder()

	f.handler.RunSync(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestHandler_RunSyncWhenRemoteUnavailable(t *testing.T) {
	f := newHandlerFixture(t)
	f.client.ListErr = google.ErrRemoteUnavailable
	req := httptest.NewRequest(http.MethodPost, "/api/sync/run", nil)
	recorder := httptest.NewRecorder()

	f.handler.RunSync(recorder, req)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestHandler_StatusReflectsLastCycle(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.store.Save(context.Background(), &oauth2.Token{
		AccessToken: "live-token",
		Expiry:      f.clock.Now().Add(time.Hour),
	}))

	// No cycle has run yet.
	recorder := httptest.NewRecorder()
	f.handler.Status(recorder, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var status SyncStatusDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&status))
	assert.True(t, status.Connected)
	assert.Nil(t, status.LastResult)

	// A completed cycle published on the bus shows up in the status.
	result := Result{Pushed: 2, Imported: 1}
	require.NoError(t, f.bus.Publish(event_bus.NewEvent(context.Background(), event_bus.SyncCompleted, result)))

	recorder = httptest.NewRecorder()
	f.handler.Status(recorder, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&status))
	require.NotNil(t, status.LastResult)
	assert.Equal(t, result, *status.LastResult)
	assert.NotNil(t, status.FinishedAt)
}

func TestHandler_ImportedEvents(t *testing.T) {
	f := newHandlerFixture(t)
	start := f.clock.Now().Add(48 * time.Hour)
	f.client.Seed(google.RemoteEvent{
		Id:        "foreign-1",
		Summary:   "Dentist",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	recorder := httptest.NewRecorder()
	f.handler.RunSync(recorder, httptest.NewRequest(http.MethodPost, "/api/sync/run", nil))
	require.Equal(t, http.StatusAccepted, recorder.Code)

	from := f.clock.Now().Format(time.RFC3339)
	to := f.clock.Now().Add(72 * time.Hour).Format(time.RFC3339)
	recorder = httptest.NewRecorder()
	f.handler.ImportedEvents(recorder,
		httptest.NewRequest(http.MethodGet, "/api/calendar/imported?from="+from+"&to="+to, nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var events []ImportedEventDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, "foreign-1", events[0].RemoteEventId)
	assert.Equal(t, "Dentist", events[0].Summary)
}

func TestHandler_ImportedEventsRejectsBadRange(t *testing.T) {
	f := newHandlerFixture(t)
	recorder := httptest.NewRecorder()

	f.handler.ImportedEvents(recorder,
		httptest.NewRequest(http.MethodGet, "/api/calendar/imported?from=yesterday&to=tomorrow", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
