package appointment

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type AppointmentService interface {
	Schedule(ctx context.Context, req *model.CreateAppointmentRequest, scheduledBy string) (*model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, updatedBy string) (*model.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	units    repository.HealthUnitRepository
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, units repository.HealthUnitRepository) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		units:    units,
	}
}

func (s *Service) Schedule(ctx context.Context, req *model.CreateAppointmentRequest, scheduledBy string) (*model.Appointment, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.InvalidInput("end time must be after start time")
	}
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.units.Get(ctx, req.UnitID); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedBy: scheduledBy,
			UpdatedBy: scheduledBy,
		},
		PatientID:    req.PatientID,
		UnitID:       req.UnitID,
		Professional: req.Professional,
		Specialty:    req.Specialty,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       model.AppointmentStatusScheduled,
		Notes:        req.Notes,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, updatedBy string) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(appointment)
	appointment.UpdatedBy = updatedBy

	if !appointment.EndTime.After(appointment.StartTime) {
		return nil, apperrors.InvalidInput("end time must be after start time")
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return appointment, nil
	}
	if appointment.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.InvalidTransition("only scheduled appointments can be cancelled")
	}

	appointment.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}
