package event_bus

import "time"

const (
	// AppointmentChanged fires after an appointment is created or updated locally.
	AppointmentChanged EventType = "appointment.changed"
	// AppointmentDeleted fires after an appointment is deleted locally.
	AppointmentDeleted EventType = "appointment.deleted"
	// GoogleConnected fires when the OAuth callback stored a fresh credential.
	GoogleConnected EventType = "google.connected"
	// SyncCompleted fires at the end of every successful sync cycle.
	SyncCompleted EventType = "sync.completed"
)

type AppointmentChangedData struct {
	AppointmentId int
	ClientName    string
	StartTime     time.Time
	EndTime       time.Time
}

type AppointmentDeletedData struct {
	AppointmentId int
	GoogleEventId string
}
