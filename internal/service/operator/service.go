package operator

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"
	"github.com/Kadu1982/sistema2-sub001/pkg/security"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type OperatorService interface {
	Create(ctx context.Context, req *model.CreateOperatorRequest, createdBy string) (*model.Operator, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Operator, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateOperatorRequest, updatedBy string) (*model.Operator, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Operator, error)
	CanAccessUnit(ctx context.Context, operatorID, unitID uuid.UUID) (bool, error)
}

type Service struct {
	repo   repository.OperatorRepository
	units  repository.HealthUnitRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.OperatorRepository, units repository.HealthUnitRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		units:  units,
		hasher: hasher,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateOperatorRequest, createdBy string) (*model.Operator, error) {
	login := strings.TrimSpace(strings.ToLower(req.Login))
	if login == "" {
		return nil, apperrors.InvalidInput("login is required")
	}

	if _, err := s.units.Get(ctx, req.UnitID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InvalidInput("password does not meet requirements")
	}

	operator := &model.Operator{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
		},
		Login:        login,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		CPF:          req.CPF,
		Email:        req.Email,
		Active:       true,
		UnitID:       req.UnitID,
		Profiles:     pq.StringArray(req.Profiles),
		Master:       req.Master,
	}

	if err := s.repo.Create(ctx, operator); err != nil {
		return nil, err
	}
	return operator, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateOperatorRequest, updatedBy string) (*model.Operator, error) {
	operator, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(operator)
	operator.UpdatedBy = updatedBy

	if req.UnitID != nil {
		if _, err := s.units.Get(ctx, *req.UnitID); err != nil {
			return nil, err
		}
	}
	if req.CurrentUnitID != nil {
		if _, err := s.units.Get(ctx, *req.CurrentUnitID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, operator); err != nil {
		return nil, err
	}
	return operator, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Operator, error) {
	return s.repo.List(ctx)
}

func (s *Service) CanAccessUnit(ctx context.Context, operatorID, unitID uuid.UUID) (bool, error) {
	operator, err := s.repo.Get(ctx, operatorID)
	if err != nil {
		return false, err
	}
	return operator.CanAccess(unitID), nil
}
