package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type PatientService interface {
	Register(ctx context.Context, req *model.CreatePatientRequest, registeredBy string) (*model.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, updatedBy string) (*model.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, term string) ([]*model.Patient, error)
	List(ctx context.Context, p model.Pagination) ([]*model.Patient, error)
	ClassifyVulnerability(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo           repository.PatientRepository
	outbox         repository.OutboxRepository
	taxIDAgeMonths int
}

func NewService(repo repository.PatientRepository, outbox repository.OutboxRepository, taxIDAgeMonths int) *Service {
	if taxIDAgeMonths <= 0 {
		taxIDAgeMonths = DefaultTaxIDAgeMonths
	}
	return &Service{
		repo:           repo,
		outbox:         outbox,
		taxIDAgeMonths: taxIDAgeMonths,
	}
}

func (s *Service) Register(ctx context.Context, req *model.CreatePatientRequest, registeredBy string) (*model.Patient, error) {
	patient := patientFromRequest(req)
	patient.ID = uuid.New()
	patient.CreatedBy = registeredBy
	patient.UpdatedBy = registeredBy

	if err := ValidateEligibility(patient, time.Now(), s.taxIDAgeMonths); err != nil {
		return nil, err
	}
	if err := s.checkUniqueIdentifiers(ctx, patient, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventPatientCreated, patient)
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, updatedBy string) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previousCPF := patient.CPF
	previousCNS := patient.CNS

	req.Apply(patient)
	patient.CPF = NormalizeCPF(patient.CPF)
	patient.UpdatedBy = updatedBy

	if err := ValidateEligibility(patient, time.Now(), s.taxIDAgeMonths); err != nil {
		return nil, err
	}

	// Uniqueness only needs re-validation when an identifier changed.
	if patient.CPF != previousCPF || patient.CNS != previousCNS {
		if err := s.checkUniqueIdentifiers(ctx, patient, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventPatientUpdated, patient)
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordEvent(ctx, model.EventPatientDeleted, patient)
	return nil
}

func (s *Service) Search(ctx context.Context, term string) ([]*model.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*model.Patient{}, nil
	}
	// Identifiers are stored as bare digits, so a formatted CPF (11 digits)
	// or CNS (15 digits) has to be stripped before the exact comparison.
	if digits := NormalizeCPF(term); digits != term && (len(digits) == 11 || len(digits) == 15) {
		term = digits
	}
	return s.repo.Search(ctx, term)
}

func (s *Service) List(ctx context.Context, p model.Pagination) ([]*model.Patient, error) {
	return s.repo.List(ctx, p)
}

func (s *Service) ClassifyVulnerability(ctx context.Context, id uuid.UUID) (bool, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return Vulnerable(patient), nil
}

// checkUniqueIdentifiers is the fast-fail layer over the storage unique
// indexes: it produces an error naming the conflicting patient, which a raw
// constraint violation cannot.
func (s *Service) checkUniqueIdentifiers(ctx context.Context, patient *model.Patient, selfID uuid.UUID) error {
	if patient.CPF != "" {
		existing, err := s.repo.FindByCPF(ctx, patient.CPF)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return apperrors.Duplicate(
				fmt.Sprintf("tax ID already registered to patient %s (%s)", existing.ID, existing.Name),
				nil,
			)
		}
	}
	if patient.CNS != "" {
		existing, err := s.repo.FindByCNS(ctx, patient.CNS)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return apperrors.Duplicate(
				fmt.Sprintf("health card ID already registered to patient %s (%s)", existing.ID, existing.Name),
				nil,
			)
		}
	}
	return nil
}

func (s *Service) recordEvent(ctx context.Context, eventType string, patient *model.Patient) {
	if s.outbox == nil {
		return
	}
	// Event delivery is best effort; the registration itself already
	// succeeded.
	_ = s.outbox.Create(ctx, model.NewOutboxEvent(eventType, patient))
}

func patientFromRequest(req *model.CreatePatientRequest) *model.Patient {
	return &model.Patient{
		Name:             req.Name,
		SocialName:       req.SocialName,
		MotherName:       req.MotherName,
		CPF:              NormalizeCPF(req.CPF),
		CPFJustification: req.CPFJustification,
		CNS:              strings.TrimSpace(req.CNS),
		Sex:              req.Sex,
		BirthDate:        req.BirthDate,
		Bedridden:        req.Bedridden,
		Homebound:        req.Homebound,
		MentalHealth:     req.MentalHealth,
		HerbalRemedies:   req.HerbalRemedies,
		OtherConditions:  req.OtherConditions,
		Street:           req.Street,
		StreetNumber:     req.StreetNumber,
		District:         req.District,
		City:             req.City,
		State:            req.State,
		ZipCode:          req.ZipCode,
		Phone:            req.Phone,
		CellPhone:        req.CellPhone,
		Email:            req.Email,
		BloodType:        req.BloodType,
		RG:               req.RG,
		RGIssuer:         req.RGIssuer,
		BirthCertificate: req.BirthCertificate,
		WorkCard:         req.WorkCard,
		VoterID:          req.VoterID,
		RecordNumber:     req.RecordNumber,
		FamilyUnit:       req.FamilyUnit,
		Race:             req.Race,
		Ethnicity:        req.Ethnicity,
		EducationLevel:   req.EducationLevel,
		FamilySituation:  req.FamilySituation,
	}
}
