package staff

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, member Staff) (Staff, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Staff, error)
	Update(ctx context.Context, member Staff) (bool, error)
	Deactivate(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo StaffRepo
}

func NewService(repo StaffRepo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, member Staff) (Staff, error) {
	if member.Name == "" {
		return Staff{}, errors.New("staff name is required")
	}
	member.Active = true
	id, err := s.repo.Create(ctx, member)
	if err != nil {
		return Staff{}, err
	}
	member.Id = id
	return member, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeInactive bool) ([]Staff, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

func (s *ServiceImpl) Update(ctx context.Context, member Staff) (bool, error) {
	if member.Name == "" {
		return false, errors.New("staff name is required")
	}
	return s.repo.Update(ctx, member)
}

func (s *ServiceImpl) Deactivate(ctx context.Context, id int) (bool, error) {
	return s.repo.Deactivate(ctx, id)
}
