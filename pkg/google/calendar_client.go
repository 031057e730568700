package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// EventSpec is the payload for creating or updating a remote calendar event.
type EventSpec struct {
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	// AttendeeEmails are invited to the event, e.g. assigned staff members.
	AttendeeEmails []string
	// ReminderMinutes replaces the calendar's default reminders with popup
	// reminders at the given offsets. Empty keeps the calendar defaults.
	ReminderMinutes []int64
	ColorId         string
}

// RemoteEvent is a calendar event as listed from the remote calendar.
type RemoteEvent struct {
	Id          string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

// CalendarClient performs event operations against the configured calendar.
// Every call acquires a fresh valid token, so the client can be constructed
// once at startup even before the account is connected.
type CalendarClient interface {
	CreateEvent(ctx context.Context, spec EventSpec) (string, error)
	UpdateEvent(ctx context.Context, eventId string, spec EventSpec) error
	// DeleteEvent treats a remote 404 as success: the desired state (event
	// gone) already holds.
	DeleteEvent(ctx context.Context, eventId string) error
	ListEvents(ctx context.Context, from time.Time, to time.Time) ([]RemoteEvent, error)
}

type CalendarClientImpl struct {
	tokens     *TokenManager
	calendarId string
	timezone   string
}

func NewCalendarClient(tokens *TokenManager, calendarId string, timezone string) *CalendarClientImpl {
	return &CalendarClientImpl{tokens: tokens, calendarId: calendarId, timezone: timezone}
}

// calendarService builds a calendar API client around the current token.
// Returns ErrUnauthenticated when no credential is stored.
func (c *CalendarClientImpl) calendarService(ctx context.Context) (*gcal.Service, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrUnauthenticated
	}
	service, err := gcal.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Calendar service: %w", err)
	}
	return service, nil
}

func (c *CalendarClientImpl) CreateEvent(ctx context.Context, spec EventSpec) (string, error) {
	log.Debugf("Creating event %q in calendar %s", spec.Summary, c.calendarId)
	service, err := c.calendarService(ctx)
	if err != nil {
		return "", err
	}

	created, err := service.Events.Insert(c.calendarId, c.toGoogleEvent(spec)).Context(ctx).Do()
	if err != nil {
		return "", translateError("unable to insert event in Google Calendar", err)
	}
	return created.Id, nil
}

func (c *CalendarClientImpl) UpdateEvent(ctx context.Context, eventId string, spec EventSpec) error {
	log.Debugf("Updating event %s in calendar %s", eventId, c.calendarId)
	service, err := c.calendarService(ctx)
	if err != nil {
		return err
	}

	_, err = service.Events.Update(c.calendarId, eventId, c.toGoogleEvent(spec)).Context(ctx).Do()
	if err != nil {
		return translateError("unable to update event in Google Calendar", err)
	}
	return nil
}

func (c *CalendarClientImpl) DeleteEvent(ctx context.Context, eventId string) error {
	log.Debugf("Deleting event %s from calendar %s", eventId, c.calendarId)
	service, err := c.calendarService(ctx)
	if err != nil {
		return err
	}

	err = service.Events.Delete(c.calendarId, eventId).Context(ctx).Do()
	if err != nil {
		translated := translateError("unable to delete event from Google Calendar", err)
		if errors.Is(translated, ErrEventNotFound) {
			return nil
		}
		return translated
	}
	return nil
}

func (c *CalendarClientImpl) ListEvents(ctx context.Context, from time.Time, to time.Time) ([]RemoteEvent, error) {
	service, err := c.calendarService(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]RemoteEvent, 0)
	pageToken := ""
	for {
		call := service.Events.List(c.calendarId).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, translateError("unable to retrieve events from Google Calendar", err)
		}
		for _, item := range page.Items {
			event, ok := c.toRemoteEvent(item)
			if !ok {
				// All-day events carry a date instead of a datetime; the
				// salon calendar only mirrors timed bookings.
				log.Debugf("skipping non-timed calendar event: %s", item.Id)
				continue
			}
			events = append(events, event)
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return events, nil
}

func (c *CalendarClientImpl) toGoogleEvent(spec EventSpec) *gcal.Event {
	event := &gcal.Event{
		Summary:     spec.Summary,
		Description: spec.Description,
		Location:    spec.Location,
		ColorId:     spec.ColorId,
		Start: &gcal.EventDateTime{
			DateTime: spec.StartTime.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: spec.EndTime.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
	}
	for _, email := range spec.AttendeeEmails {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}
	if len(spec.ReminderMinutes) > 0 {
		overrides := make([]*gcal.EventReminder, 0, len(spec.ReminderMinutes))
		for _, minutes := range spec.ReminderMinutes {
			overrides = append(overrides, &gcal.EventReminder{Method: "popup", Minutes: minutes})
		}
		event.Reminders = &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}
	return event
}

func (c *CalendarClientImpl) toRemoteEvent(item *gcal.Event) (RemoteEvent, bool) {
	if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
		return RemoteEvent{}, false
	}
	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return RemoteEvent{}, false
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return RemoteEvent{}, false
	}
	return RemoteEvent{
		Id:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		StartTime:   startTime,
		EndTime:     endTime,
	}, true
}

// translateError maps Google API failures to the package's sentinel errors so
// callers can decide between aborting, skipping, and retrying next cycle.
func translateError(msg string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %s: %v", ErrAuthExpired, msg, err)
		case apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone:
			return fmt.Errorf("%w: %s: %v", ErrEventNotFound, msg, err)
		case apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, msg, err)
		}
		return fmt.Errorf("%s: %w", msg, err)
	}
	// No structured API error means the request never got a response.
	return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, msg, err)
}
