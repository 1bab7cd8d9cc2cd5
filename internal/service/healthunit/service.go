package healthunit

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type HealthUnitService interface {
	Create(ctx context.Context, req *model.CreateHealthUnitRequest, createdBy string) (*model.HealthUnit, error)
	Get(ctx context.Context, id uuid.UUID) (*model.HealthUnit, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateHealthUnitRequest, updatedBy string) (*model.HealthUnit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.HealthUnit, error)
}

type Service struct {
	repo repository.HealthUnitRepository
}

func NewService(repo repository.HealthUnitRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateHealthUnitRequest, createdBy string) (*model.HealthUnit, error) {
	cnes := strings.TrimSpace(req.CNES)
	if cnes == "" {
		return nil, apperrors.InvalidInput("cnes is required")
	}

	unit := &model.HealthUnit{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
		},
		Name:         req.Name,
		CNES:         cnes,
		Type:         req.Type,
		Street:       req.Street,
		StreetNumber: req.StreetNumber,
		District:     req.District,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		Phone:        req.Phone,
		Active:       true,
	}

	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.HealthUnit, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateHealthUnitRequest, updatedBy string) (*model.HealthUnit, error) {
	unit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(unit)
	unit.UpdatedBy = updatedBy

	if err := s.repo.Update(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.HealthUnit, error) {
	return s.repo.List(ctx)
}
