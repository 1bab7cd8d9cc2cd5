package sadt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"
	"github.com/Kadu1982/sistema2-sub001/pkg/logger"
	"github.com/Kadu1982/sistema2-sub001/pkg/metrics"
	"github.com/Kadu1982/sistema2-sub001/pkg/render"

	"github.com/Kadu1982/sistema2-sub001/internal/email"
	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type SadtService interface {
	Issue(ctx context.Context, req *model.IssueSadtRequest, issuedBy string) (*model.SadtDocument, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SadtDocument, error)
	Transition(ctx context.Context, id uuid.UUID, target model.SadtStatus) (*model.SadtDocument, error)
	ExecuteProcedure(ctx context.Context, documentID, procedureID uuid.UUID, notes string) error
	Render(ctx context.Context, id uuid.UUID) (*model.SadtDocument, error)
	List(ctx context.Context, filters *model.SadtFilters) ([]*model.SadtDocument, error)
}

type Service struct {
	repo     repository.SadtRepository
	patients repository.PatientRepository
	units    repository.HealthUnitRepository
	renderer render.Renderer
	mailer   email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.SadtRepository,
	patients repository.PatientRepository,
	units repository.HealthUnitRepository,
	renderer render.Renderer,
	mailer email.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		units:    units,
		renderer: renderer,
		mailer:   mailer,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *Service) Issue(ctx context.Context, req *model.IssueSadtRequest, issuedBy string) (*model.SadtDocument, error) {
	if err := validateIssueRequest(req); err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	unit, err := s.units.Get(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now()
	if req.IssuedAt != nil && !req.IssuedAt.IsZero() {
		issuedAt = *req.IssuedAt
	}

	doc := &model.SadtDocument{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedBy: issuedBy,
			UpdatedBy: issuedBy,
		},
		PatientID:              req.PatientID,
		AppointmentID:          req.AppointmentID,
		Type:                   req.Type,
		Status:                 model.SadtStatusIssued,
		Urgent:                 req.Urgent,
		IssuedAt:               issuedAt,
		UnitName:               unit.Name,
		UnitCNES:               unit.CNES,
		UnitAddress:            unit.FormattedAddress(),
		UnitPhone:              unit.Phone,
		UnitCity:               unit.City,
		UnitState:              unit.State,
		ProfessionalName:       req.Professional.Name,
		ProfessionalOccupation: req.Professional.Occupation,
		ProfessionalCouncil:    req.Professional.Council,
		ProfessionalCouncilNo:  req.Professional.CouncilNo,
		Notes:                  req.Notes,
	}
	for _, p := range req.Procedures {
		doc.Procedures = append(doc.Procedures, &model.SadtProcedure{
			ID:             uuid.New(),
			DocumentID:     doc.ID,
			Code:           p.Code,
			Name:           p.Name,
			Quantity:       p.Quantity,
			DiagnosisCode:  p.DiagnosisCode,
			Justification:  p.Justification,
			Preparation:    p.Preparation,
			ReferencePrice: p.ReferencePrice,
			Authorized:     p.Authorized,
		})
	}

	if err := s.allocateAndPersist(ctx, doc); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DocumentsIssued.WithLabelValues(string(doc.Type)).Inc()
	}

	// The document is committed at this point; rendering and mail delivery
	// are retryable follow-ups and must not undo the issue.
	s.renderAndStore(ctx, doc, patient)
	s.notifyPatient(ctx, doc, patient)

	return doc, nil
}

// allocateAndPersist computes the next number for the document's prefix and
// inserts the document. The unique index on sadt_number is the source of
// truth: a concurrent allocation surfaces as a duplicate on insert, in which
// case the sequence is recomputed from scratch.
func (s *Service) allocateAndPersist(ctx context.Context, doc *model.SadtDocument) error {
	prefix := NumberPrefix(doc.Type, doc.IssuedAt)

	var lastErr error
	for attempt := 0; attempt < maxAllocationRetries; attempt++ {
		max, err := s.repo.MaxSuffix(ctx, prefix)
		if err != nil {
			return apperrors.Dependency("failed to read document number sequence", err)
		}
		doc.Number = FormatNumber(prefix, max+1)

		err = s.repo.Create(ctx, doc, model.NewOutboxEvent(model.EventSadtIssued, doc))
		if err == nil {
			return nil
		}
		if !apperrors.IsCode(err, apperrors.ErrDuplicateIdentifier) {
			return err
		}
		lastErr = err
		if s.metrics != nil {
			s.metrics.AllocationRetries.Inc()
		}
	}
	return apperrors.AllocationConflict(lastErr)
}

func (s *Service) renderAndStore(ctx context.Context, doc *model.SadtDocument, patient *model.Patient) {
	if s.renderer == nil {
		return
	}
	start := time.Now()
	payload, err := s.renderer.Render(ctx, doc, patient)
	if s.metrics != nil {
		s.metrics.RenderLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Error(err, "failed to render sadt document", "sadt_number", doc.Number)
		return
	}
	if err := s.repo.SetPayload(ctx, doc.ID, payload); err != nil {
		s.logger.Error(err, "failed to store sadt payload", "sadt_number", doc.Number)
		return
	}
	doc.Payload = payload
}

func (s *Service) notifyPatient(ctx context.Context, doc *model.SadtDocument, patient *model.Patient) {
	if s.mailer == nil || patient.Email == "" {
		return
	}
	if err := s.mailer.SendSadtIssued(ctx, patient.Email, doc); err != nil {
		s.logger.Warn("failed to email issued sadt", "sadt_number", doc.Number, "error", err.Error())
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.SadtDocument, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Transition(ctx context.Context, id uuid.UUID, target model.SadtStatus) (*model.SadtDocument, error) {
	if target != model.SadtStatusCancelled && target != model.SadtStatusPerformed {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("cannot transition to %s", target))
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Re-requesting an already-applied transition is a no-op success.
	if doc.Status == target {
		return doc, nil
	}
	if doc.Status != model.SadtStatusIssued {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("document %s is %s and cannot transition to %s", doc.Number, doc.Status, target),
		)
	}

	eventType := model.EventSadtCancelled
	if target == model.SadtStatusPerformed {
		eventType = model.EventSadtPerformed
	}

	doc.Status = target
	err = s.repo.SetStatus(ctx, id, model.SadtStatusIssued, target, model.NewOutboxEvent(eventType, doc))
	if apperrors.IsCode(err, apperrors.ErrInvalidTransition) {
		// Lost the race against another transition between the read and the
		// guarded update; the stored status decides.
		current, gerr := s.repo.Get(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if current.Status == target {
			return current, nil
		}
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("document %s is %s and cannot transition to %s", current.Number, current.Status, target),
		)
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DocumentTransitions.WithLabelValues(string(target)).Inc()
	}
	return doc, nil
}

func (s *Service) ExecuteProcedure(ctx context.Context, documentID, procedureID uuid.UUID, notes string) error {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == model.SadtStatusCancelled {
		return apperrors.InvalidTransition(
			fmt.Sprintf("document %s is cancelled; procedures cannot be executed", doc.Number),
		)
	}
	return s.repo.MarkProcedureExecuted(ctx, documentID, procedureID, time.Now(), notes)
}

func (s *Service) Render(ctx context.Context, id uuid.UUID) (*model.SadtDocument, error) {
	if s.renderer == nil {
		return nil, apperrors.Dependency("document renderer is not configured", nil)
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patient, err := s.patients.Get(ctx, doc.PatientID)
	if err != nil {
		return nil, err
	}

	payload, err := s.renderer.Render(ctx, doc, patient)
	if err != nil {
		return nil, apperrors.Dependency("document renderer failed", err)
	}
	if err := s.repo.SetPayload(ctx, doc.ID, payload); err != nil {
		return nil, err
	}
	doc.Payload = payload
	return doc, nil
}

func (s *Service) List(ctx context.Context, filters *model.SadtFilters) ([]*model.SadtDocument, error) {
	return s.repo.List(ctx, filters)
}

func validateIssueRequest(req *model.IssueSadtRequest) error {
	if req.PatientID == uuid.Nil {
		return apperrors.InvalidInput("patient reference is required")
	}
	if !req.Type.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("invalid document type %q", req.Type))
	}
	if len(req.Procedures) == 0 {
		return apperrors.InvalidInput("at least one procedure is required")
	}
	for i, p := range req.Procedures {
		if p.Code == "" {
			return apperrors.InvalidInput(fmt.Sprintf("procedure %d: code is required", i+1))
		}
		if p.Name == "" {
			return apperrors.InvalidInput(fmt.Sprintf("procedure %d: name is required", i+1))
		}
		if p.Quantity < 1 {
			return apperrors.InvalidInput(fmt.Sprintf("procedure %d: quantity must be at least 1", i+1))
		}
	}
	return nil
}
