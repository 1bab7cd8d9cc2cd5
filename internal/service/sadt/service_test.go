package sadt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"
	"github.com/Kadu1982/sistema2-sub001/pkg/logger"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

type fakeSadtRepo struct {
	docs     map[uuid.UUID]*model.SadtDocument
	byNumber map[string]uuid.UUID
	events   []*model.OutboxEvent

	// failCreates forces the next N inserts to fail as duplicates, standing in
	// for a concurrent allocation racing on the same number.
	failCreates int

	// afterGet runs once after the next Get, interleaving a concurrent write
	// between a read and the guarded status update that follows it.
	afterGet func(*fakeSadtRepo)
}

func newFakeSadtRepo() *fakeSadtRepo {
	return &fakeSadtRepo{
		docs:     make(map[uuid.UUID]*model.SadtDocument),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *fakeSadtRepo) Create(_ context.Context, doc *model.SadtDocument, event *model.OutboxEvent) error {
	if r.failCreates > 0 {
		r.failCreates--
		return apperrors.Duplicate("document number already allocated", nil)
	}
	if _, taken := r.byNumber[doc.Number]; taken {
		return apperrors.Duplicate("document number already allocated", nil)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	r.byNumber[doc.Number] = doc.ID
	r.events = append(r.events, event)
	return nil
}

func (r *fakeSadtRepo) Get(_ context.Context, id uuid.UUID) (*model.SadtDocument, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, apperrors.NotFound("sadt document", nil)
	}
	cp := *doc
	if hook := r.afterGet; hook != nil {
		r.afterGet = nil
		hook(r)
	}
	return &cp, nil
}

func (r *fakeSadtRepo) GetByNumber(_ context.Context, number string) (*model.SadtDocument, error) {
	id, ok := r.byNumber[number]
	if !ok {
		return nil, apperrors.NotFound("sadt document", nil)
	}
	cp := *r.docs[id]
	return &cp, nil
}

func (r *fakeSadtRepo) MaxSuffix(_ context.Context, prefix string) (int, error) {
	max := 0
	for number := range r.byNumber {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		suffix, err := strconv.Atoi(number[len(prefix):])
		if err != nil {
			continue
		}
		if suffix > max {
			max = suffix
		}
	}
	return max, nil
}

func (r *fakeSadtRepo) SetStatus(_ context.Context, id uuid.UUID, from, to model.SadtStatus, event *model.OutboxEvent) error {
	doc, ok := r.docs[id]
	if !ok {
		return apperrors.NotFound("sadt document", nil)
	}
	if doc.Status != from {
		return apperrors.InvalidTransition(fmt.Sprintf("document is %s, not %s", doc.Status, from))
	}
	doc.Status = to
	r.events = append(r.events, event)
	return nil
}

func (r *fakeSadtRepo) SetPayload(_ context.Context, id uuid.UUID, payload []byte) error {
	doc, ok := r.docs[id]
	if !ok {
		return apperrors.NotFound("sadt document", nil)
	}
	doc.Payload = payload
	return nil
}

func (r *fakeSadtRepo) MarkProcedureExecuted(_ context.Context, documentID, procedureID uuid.UUID, executedAt time.Time, notes string) error {
	doc, ok := r.docs[documentID]
	if !ok {
		return apperrors.NotFound("sadt document", nil)
	}
	for _, p := range doc.Procedures {
		if p.ID == procedureID {
			p.Executed = true
			p.ExecutedAt = &executedAt
			p.ExecutionNotes = notes
			return nil
		}
	}
	return apperrors.NotFound("sadt procedure", nil)
}

func (r *fakeSadtRepo) List(_ context.Context, _ *model.SadtFilters) ([]*model.SadtDocument, error) {
	var out []*model.SadtDocument
	for _, doc := range r.docs {
		cp := *doc
		out = append(out, &cp)
	}
	return out, nil
}

type fixedPatientRepo struct {
	patient *model.Patient
}

func (r *fixedPatientRepo) Create(context.Context, *model.Patient) error { return nil }
func (r *fixedPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if r.patient == nil || r.patient.ID != id {
		return nil, apperrors.NotFound("patient", nil)
	}
	return r.patient, nil
}
func (r *fixedPatientRepo) Update(context.Context, *model.Patient) error  { return nil }
func (r *fixedPatientRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (r *fixedPatientRepo) FindByCPF(context.Context, string) (*model.Patient, error) {
	return nil, nil
}
func (r *fixedPatientRepo) FindByCNS(context.Context, string) (*model.Patient, error) {
	return nil, nil
}
func (r *fixedPatientRepo) Search(context.Context, string) ([]*model.Patient, error) {
	return nil, nil
}
func (r *fixedPatientRepo) List(context.Context, model.Pagination) ([]*model.Patient, error) {
	return nil, nil
}

type fixedUnitRepo struct {
	unit *model.HealthUnit
}

func (r *fixedUnitRepo) Create(context.Context, *model.HealthUnit) error { return nil }
func (r *fixedUnitRepo) Get(_ context.Context, id uuid.UUID) (*model.HealthUnit, error) {
	if r.unit == nil || r.unit.ID != id {
		return nil, apperrors.NotFound("health unit", nil)
	}
	return r.unit, nil
}
func (r *fixedUnitRepo) Update(context.Context, *model.HealthUnit) error { return nil }
func (r *fixedUnitRepo) Delete(context.Context, uuid.UUID) error         { return nil }
func (r *fixedUnitRepo) List(context.Context) ([]*model.HealthUnit, error) {
	return nil, nil
}

func newTestFixture(repo *fakeSadtRepo) (*Service, *model.Patient, *model.HealthUnit) {
	patient := &model.Patient{
		Base: model.Base{ID: uuid.New()},
		Name: "Maria Silva",
	}
	unit := &model.HealthUnit{
		Base:   model.Base{ID: uuid.New()},
		Name:   "UBS Central",
		CNES:   "1234567",
		Street: "Rua das Flores",
		City:   "Campinas",
		State:  "SP",
		Phone:  "19 3333-0000",
	}
	svc := NewService(repo, &fixedPatientRepo{patient: patient}, &fixedUnitRepo{unit: unit}, nil, nil, logger.NewLogger(nil), nil)
	return svc, patient, unit
}

func issueRequest(patientID, unitID uuid.UUID, docType model.SadtType) *model.IssueSadtRequest {
	issuedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	return &model.IssueSadtRequest{
		PatientID: patientID,
		UnitID:    unitID,
		Type:      docType,
		IssuedAt:  &issuedAt,
		Professional: model.SadtProfessional{
			Name:       "Dr. Carlos Pereira",
			Occupation: "Clinico Geral",
			Council:    "CRM",
			CouncilNo:  "123456/SP",
		},
		Procedures: []model.SadtProcedureRequest{
			{Code: "0202010503", Name: "Hemograma completo", Quantity: 1},
		},
	}
}

func TestIssueAssignsSequentialNumbers(t *testing.T) {
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		doc, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
		require.NoError(t, err)
		assert.Equal(t, FormatNumber("LAB26", i), doc.Number)
		assert.Equal(t, model.SadtStatusIssued, doc.Status)
	}
}

func TestIssueSequencesPerPrefix(t *testing.T) {
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)
	ctx := context.Background()

	lab, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.NoError(t, err)
	img, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeImaging), "op")
	require.NoError(t, err)

	assert.Equal(t, "LAB26000001", lab.Number)
	assert.Equal(t, "IMG26000001", img.Number, "each prefix starts its own sequence")
}

func TestIssueSnapshotsUnitAndProfessional(t *testing.T) {
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)

	doc, err := svc.Issue(context.Background(), issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.NoError(t, err)

	assert.Equal(t, unit.Name, doc.UnitName)
	assert.Equal(t, unit.CNES, doc.UnitCNES)
	assert.Equal(t, "Dr. Carlos Pereira", doc.ProfessionalName)
	require.Len(t, doc.Procedures, 1)
	assert.NotEqual(t, uuid.Nil, doc.Procedures[0].ID)
	assert.Equal(t, doc.ID, doc.Procedures[0].DocumentID)

	require.Len(t, repo.events, 1)
	assert.Equal(t, model.EventSadtIssued, repo.events[0].EventType)
}

func TestIssueRetriesOnAllocationRace(t *testing.T) {
	repo := newFakeSadtRepo()
	repo.failCreates = 2
	svc, patient, unit := newTestFixture(repo)

	doc, err := svc.Issue(context.Background(), issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.NoError(t, err)
	assert.Equal(t, "LAB26000001", doc.Number)
}

func TestIssueGivesUpAfterRetryBudget(t *testing.T) {
	repo := newFakeSadtRepo()
	repo.failCreates = maxAllocationRetries
	svc, patient, unit := newTestFixture(repo)

	_, err := svc.Issue(context.Background(), issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrAllocationConflict))
	assert.Empty(t, repo.docs, "nothing persisted after exhausted retries")
}

func TestIssueValidation(t *testing.T) {
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)
	ctx := context.Background()

	t.Run("missing patient reference", func(t *testing.T) {
		req := issueRequest(uuid.Nil, unit.ID, model.SadtTypeLaboratory)
		_, err := svc.Issue(ctx, req, "op")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
	})

	t.Run("unknown document type", func(t *testing.T) {
		req := issueRequest(patient.ID, unit.ID, model.SadtType("DENTAL"))
		_, err := svc.Issue(ctx, req, "op")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
	})

	t.Run("no procedures", func(t *testing.T) {
		req := issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory)
		req.Procedures = nil
		_, err := svc.Issue(ctx, req, "op")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory)
		req.Procedures[0].Quantity = 0
		_, err := svc.Issue(ctx, req, "op")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInput))
	})

	t.Run("unknown patient", func(t *testing.T) {
		req := issueRequest(uuid.New(), unit.ID, model.SadtTypeLaboratory)
		_, err := svc.Issue(ctx, req, "op")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	})
}

func TestTransitions(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T) (*Service, *fakeSadtRepo, *model.SadtDocument) {
		repo := newFakeSadtRepo()
		svc, patient, unit := newTestFixture(repo)
		doc, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
		require.NoError(t, err)
		return svc, repo, doc
	}

	t.Run("issued to cancelled", func(t *testing.T) {
		svc, repo, doc := issue(t)
		cancelled, err := svc.Transition(ctx, doc.ID, model.SadtStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.SadtStatusCancelled, cancelled.Status)
		assert.Equal(t, model.EventSadtCancelled, repo.events[len(repo.events)-1].EventType)
	})

	t.Run("issued to performed", func(t *testing.T) {
		svc, repo, doc := issue(t)
		performed, err := svc.Transition(ctx, doc.ID, model.SadtStatusPerformed)
		require.NoError(t, err)
		assert.Equal(t, model.SadtStatusPerformed, performed.Status)
		assert.Equal(t, model.EventSadtPerformed, repo.events[len(repo.events)-1].EventType)
	})

	t.Run("repeating a transition is a no-op", func(t *testing.T) {
		svc, repo, doc := issue(t)
		_, err := svc.Transition(ctx, doc.ID, model.SadtStatusCancelled)
		require.NoError(t, err)
		eventsBefore := len(repo.events)

		again, err := svc.Transition(ctx, doc.ID, model.SadtStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.SadtStatusCancelled, again.Status)
		assert.Equal(t, eventsBefore, len(repo.events), "no duplicate event emitted")
	})

	t.Run("terminal statuses reject other transitions", func(t *testing.T) {
		svc, _, doc := issue(t)
		_, err := svc.Transition(ctx, doc.ID, model.SadtStatusCancelled)
		require.NoError(t, err)

		_, err = svc.Transition(ctx, doc.ID, model.SadtStatusPerformed)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
	})

	t.Run("conflicting concurrent transition loses cleanly", func(t *testing.T) {
		svc, repo, doc := issue(t)
		// A cancel commits between this request's read and its status update.
		repo.afterGet = func(r *fakeSadtRepo) {
			r.docs[doc.ID].Status = model.SadtStatusCancelled
		}

		_, err := svc.Transition(ctx, doc.ID, model.SadtStatusPerformed)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
		assert.Equal(t, model.SadtStatusCancelled, repo.docs[doc.ID].Status,
			"the first terminal state stands")
	})

	t.Run("identical concurrent transition stays idempotent", func(t *testing.T) {
		svc, repo, doc := issue(t)
		eventsBefore := len(repo.events)
		repo.afterGet = func(r *fakeSadtRepo) {
			r.docs[doc.ID].Status = model.SadtStatusCancelled
		}

		got, err := svc.Transition(ctx, doc.ID, model.SadtStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.SadtStatusCancelled, got.Status)
		assert.Equal(t, eventsBefore, len(repo.events), "no duplicate event emitted")
	})

	t.Run("issued is not a transition target", func(t *testing.T) {
		svc, _, doc := issue(t)
		_, err := svc.Transition(ctx, doc.ID, model.SadtStatusIssued)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
	})
}

func TestExecuteProcedure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)

	doc, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.NoError(t, err)
	procedureID := doc.Procedures[0].ID

	require.NoError(t, svc.ExecuteProcedure(ctx, doc.ID, procedureID, "collected at front desk"))

	stored := repo.docs[doc.ID]
	assert.True(t, stored.Procedures[0].Executed)
	assert.Equal(t, "collected at front desk", stored.Procedures[0].ExecutionNotes)
}

func TestExecuteProcedureOnCancelledDocument(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)

	doc, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.NoError(t, err)
	_, err = svc.Transition(ctx, doc.ID, model.SadtStatusCancelled)
	require.NoError(t, err)

	err = svc.ExecuteProcedure(ctx, doc.ID, doc.Procedures[0].ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestRenderWithoutRenderer(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSadtRepo()
	svc, patient, unit := newTestFixture(repo)

	doc, err := svc.Issue(ctx, issueRequest(patient.ID, unit.ID, model.SadtTypeLaboratory), "op")
	require.NoError(t, err)

	_, err = svc.Render(ctx, doc.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrDependencyFailure))
}
