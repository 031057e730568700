package appointment

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a status value coming from the API.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown appointment status: %q", s)
}

// Appointment is a booking in the salon's local store. GoogleEventId is set
// once the appointment has been mirrored to the remote calendar; an
// appointment carries at most one remote event. CalendarDirty marks local
// edits that have not been pushed yet.
type Appointment struct {
	Id            int
	Uid           string
	ClientName    string
	StartTime     time.Time
	EndTime       time.Time
	Status        Status
	StaffIds      []int
	StaffNames    []string
	OfferingIds   []int
	OfferingNames []string
	GoogleEventId string
	CalendarDirty bool
}

// Mirrored reports whether the appointment has a remote calendar counterpart.
func (a Appointment) Mirrored() bool {
	return a.GoogleEventId != ""
}
