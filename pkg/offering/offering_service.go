package offering

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, offering Offering) (Offering, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Offering, error)
	Update(ctx context.Context, offering Offering) (bool, error)
	Deactivate(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo OfferingRepo
}

func NewService(repo OfferingRepo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, offering Offering) (Offering, error) {
	if offering.Name == "" {
		return Offering{}, errors.New("offering name is required")
	}
	if offering.DurationMinutes <= 0 {
		return Offering{}, errors.New("offering duration must be positive")
	}
	offering.Active = true
	id, err := s.repo.Create(ctx, offering)
	if err != nil {
		return Offering{}, err
	}
	offering.Id = id
	return offering, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeInactive bool) ([]Offering, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

func (s *ServiceImpl) Update(ctx context.Context, offering Offering) (bool, error) {
	if offering.Name == "" {
		return false, errors.New("offering name is required")
	}
	return s.repo.Update(ctx, offering)
}

func (s *ServiceImpl) Deactivate(ctx context.Context, id int) (bool, error) {
	return s.repo.Deactivate(ctx, id)
}
