package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tressly/tressly/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) Create(ctx context.Context, appt Appointment) (*Appointment, error) {
	if err := validate(appt); err != nil {
		return nil, err
	}
	if appt.Status == "" {
		appt.Status = StatusScheduled
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("failed to store appointment: %w", err)
	}

	s.publishChanged(ctx, created)
	return &created, nil
}

func (s *Service) Get(ctx context.Context, id int) (Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	return s.repo.GetBetween(ctx, from, to)
}

func (s *Service) Update(ctx context.Context, appt Appointment) (*Appointment, error) {
	if err := validate(appt); err != nil {
		return nil, err
	}

	ok, err := s.repo.Update(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	updated, err := s.repo.Get(ctx, appt.Id)
	if err != nil {
		return nil, err
	}
	s.publishChanged(ctx, updated)
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	// The remote mirror is removed by a direct call, not discovered by polling;
	// the deletion event carries the remote id for that purpose.
	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AppointmentDeleted, event_bus.AppointmentDeletedData{
		AppointmentId: id,
		GoogleEventId: appt.GoogleEventId,
	}))
	if err != nil {
		log.Errorf("failed to publish appointment deletion: %v", err)
	}
	return nil
}

func (s *Service) publishChanged(ctx context.Context, appt Appointment) {
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.AppointmentChanged, event_bus.AppointmentChangedData{
		AppointmentId: appt.Id,
		ClientName:    appt.ClientName,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
	}))
	if err != nil {
		log.Errorf("failed to publish appointment change: %v", err)
	}
}

func validate(appt Appointment) error {
	if appt.ClientName == "" {
		return errors.New("client name is required")
	}
	if !appt.EndTime.After(appt.StartTime) {
		return errors.New("appointment end time must be after start time")
	}
	return nil
}
