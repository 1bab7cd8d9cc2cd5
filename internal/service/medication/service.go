package medication

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type MedicationService interface {
	Create(ctx context.Context, req *model.CreateMedicationRequest, createdBy string) (*model.Medication, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicationRequest, updatedBy string) (*model.Medication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, name string) ([]*model.Medication, error)
	List(ctx context.Context) ([]*model.Medication, error)
}

type Service struct {
	repo repository.MedicationRepository
}

func NewService(repo repository.MedicationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateMedicationRequest, createdBy string) (*model.Medication, error) {
	medication := &model.Medication{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
		},
		Name:             req.Name,
		ActiveIngredient: req.ActiveIngredient,
		Form:             req.Form,
		Dosage:           req.Dosage,
		Stock:            req.Stock,
		StockUnit:        req.StockUnit,
		Controlled:       req.Controlled,
	}

	if err := s.repo.Create(ctx, medication); err != nil {
		return nil, err
	}
	return medication, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicationRequest, updatedBy string) (*model.Medication, error) {
	medication, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(medication)
	medication.UpdatedBy = updatedBy

	if err := s.repo.Update(ctx, medication); err != nil {
		return nil, err
	}
	return medication, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, name string) ([]*model.Medication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []*model.Medication{}, nil
	}
	return s.repo.SearchByName(ctx, name)
}

func (s *Service) List(ctx context.Context) ([]*model.Medication, error) {
	return s.repo.List(ctx)
}
