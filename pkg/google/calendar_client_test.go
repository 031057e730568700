package google

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"unauthorized", &googleapi.Error{Code: 401}, ErrAuthExpired},
		{"forbidden", &googleapi.Error{Code: 403}, ErrAuthExpired},
		{"not found", &googleapi.Error{Code: 404}, ErrEventNotFound},
		{"gone", &googleapi.Error{Code: 410}, ErrEventNotFound},
		{"server error", &googleapi.Error{Code: 500}, ErrRemoteUnavailable},
		{"bad gateway", &googleapi.Error{Code: 502}, ErrRemoteUnavailable},
		{"network failure", &net.DNSError{Err: "no such host"}, ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated := translateError("test call", tt.err)
			assert.ErrorIs(t, translated, tt.expected)
		})
	}
}

func TestTranslateError_ClientErrorPassesThrough(t *testing.T) {
	apiErr := &googleapi.Error{Code: 400, Message: "bad request"}

	translated := translateError("test call", apiErr)

	assert.True(t, errors.As(translated, new(*googleapi.Error)))
	assert.NotErrorIs(t, translated, ErrAuthExpired)
	assert.NotErrorIs(t, translated, ErrEventNotFound)
	assert.NotErrorIs(t, translated, ErrRemoteUnavailable)
}

func TestToGoogleEvent(t *testing.T) {
	client := NewCalendarClient(nil, "primary", "Europe/Madrid")
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	event := client.toGoogleEvent(EventSpec{
		Summary:         "Maria Lopez - Haircut",
		Description:     "Staff: Carla",
		StartTime:       start,
		EndTime:         start.Add(45 * time.Minute),
		Location:        "Tressly Salon",
		AttendeeEmails:  []string{"carla@example.com"},
		ReminderMinutes: []int64{30},
		ColorId:         "5",
	})

	assert.Equal(t, "Maria Lopez - Haircut", event.Summary)
	assert.Equal(t, "Staff: Carla", event.Description)
	assert.Equal(t, "Tressly Salon", event.Location)
	assert.Equal(t, "5", event.ColorId)
	assert.Equal(t, start.Format(time.RFC3339), event.Start.DateTime)
	assert.Equal(t, "Europe/Madrid", event.Start.TimeZone)
	assert.Len(t, event.Attendees, 1)
	assert.Equal(t, "carla@example.com", event.Attendees[0].Email)
	assert.False(t, event.Reminders.UseDefault)
	assert.Len(t, event.Reminders.Overrides, 1)
	assert.Equal(t, int64(30), event.Reminders.Overrides[0].Minutes)
}

func TestToGoogleEvent_NoRemindersKeepsCalendarDefaults(t *testing.T) {
	client := NewCalendarClient(nil, "primary", "Europe/Madrid")
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	event := client.toGoogleEvent(EventSpec{
		Summary:   "Maria Lopez",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})

	assert.Nil(t, event.Reminders)
}

func TestToRemoteEvent_SkipsAllDayEvents(t *testing.T) {
	client := NewCalendarClient(nil, "primary", "Europe/Madrid")

	// All-day events carry a date, not a datetime.
	_, ok := client.toRemoteEvent(&gcal.Event{
		Id:    "all-day-1",
		Start: &gcal.EventDateTime{Date: "2025-03-12"},
		End:   &gcal.EventDateTime{Date: "2025-03-13"},
	})
	assert.False(t, ok)
}

func TestToRemoteEvent_TimedEvent(t *testing.T) {
	client := NewCalendarClient(nil, "primary", "Europe/Madrid")
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	event, ok := client.toRemoteEvent(&gcal.Event{
		Id:      "evt-1",
		Summary: "Dentist",
		Start:   &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: start.Add(time.Hour).Format(time.RFC3339)},
	})

	assert.True(t, ok)
	assert.Equal(t, "evt-1", event.Id)
	assert.Equal(t, "Dentist", event.Summary)
	assert.Equal(t, start.Unix(), event.StartTime.Unix())
}
