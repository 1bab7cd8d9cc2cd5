package patient

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	if _, ok := r.patients[p.ID]; !ok {
		return apperrors.NotFound("patient", nil)
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.patients[id]; !ok {
		return apperrors.NotFound("patient", nil)
	}
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) FindByCPF(_ context.Context, cpf string) (*model.Patient, error) {
	for _, p := range r.patients {
		if p.CPF == cpf {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) FindByCNS(_ context.Context, cns string) (*model.Patient, error) {
	for _, p := range r.patients {
		if p.CNS == cns {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) Search(_ context.Context, term string) ([]*model.Patient, error) {
	lowered := strings.ToLower(term)
	var out []*model.Patient
	for _, p := range r.patients {
		nameMatch := strings.Contains(strings.ToLower(p.Name), lowered) ||
			strings.Contains(strings.ToLower(p.SocialName), lowered) ||
			strings.Contains(strings.ToLower(p.MotherName), lowered)
		if nameMatch || p.CPF == term || p.CNS == term {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakePatientRepo) List(_ context.Context, _ model.Pagination) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return r.events, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func adultRequest(name, cpf string) *model.CreatePatientRequest {
	return &model.CreatePatientRequest{
		Name:       name,
		MotherName: "Mae de " + name,
		CPF:        cpf,
		Sex:        model.SexFemale,
		BirthDate:  time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterPatient(t *testing.T) {
	repo := newFakePatientRepo()
	outbox := &fakeOutboxRepo{}
	svc := NewService(repo, outbox, 0)
	ctx := context.Background()

	created, err := svc.Register(ctx, adultRequest("Maria Silva", "111.444.777-35"), "operator1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "11144477735", created.CPF, "stored tax ID is normalized to digits")
	assert.Equal(t, "operator1", created.CreatedBy)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventPatientCreated, outbox.events[0].EventType)
}

func TestRegisterDuplicateCPFNamesExistingPatient(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	first, err := svc.Register(ctx, adultRequest("Maria Silva", "11144477735"), "op")
	require.NoError(t, err)

	_, err = svc.Register(ctx, adultRequest("Joana Souza", "11144477735"), "op")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrDuplicateIdentifier))
	assert.Contains(t, err.Error(), first.ID.String())
	assert.Contains(t, err.Error(), "Maria Silva")
}

func TestRegisterDuplicateCNS(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	req := adultRequest("Maria Silva", "11144477735")
	req.CNS = "700000000000001"
	_, err := svc.Register(ctx, req, "op")
	require.NoError(t, err)

	other := adultRequest("Joana Souza", "52998224725")
	other.CNS = "700000000000001"
	_, err = svc.Register(ctx, other, "op")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrDuplicateIdentifier))
}

func TestUpdatePatientPartialMerge(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	req := adultRequest("Maria Silva", "11144477735")
	req.City = "Campinas"
	req.Phone = "19 3333-0000"
	created, err := svc.Register(ctx, req, "op")
	require.NoError(t, err)

	newPhone := "19 99999-0000"
	updated, err := svc.Update(ctx, created.ID, &model.UpdatePatientRequest{Phone: &newPhone}, "op2")
	require.NoError(t, err)

	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, "Maria Silva", updated.Name, "unset fields survive the merge")
	assert.Equal(t, "Campinas", updated.City)
	assert.Equal(t, "11144477735", updated.CPF)
	assert.Equal(t, "op2", updated.UpdatedBy)
}

func TestUpdatePatientKeepingOwnCPF(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	created, err := svc.Register(ctx, adultRequest("Maria Silva", "11144477735"), "op")
	require.NoError(t, err)

	// Re-submitting the patient's own CPF is not a conflict.
	sameCPF := "111.444.777-35"
	_, err = svc.Update(ctx, created.ID, &model.UpdatePatientRequest{CPF: &sameCPF}, "op")
	assert.NoError(t, err)
}

func TestUpdatePatientToTakenCPF(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, adultRequest("Maria Silva", "11144477735"), "op")
	require.NoError(t, err)
	second, err := svc.Register(ctx, adultRequest("Joana Souza", "52998224725"), "op")
	require.NoError(t, err)

	taken := "11144477735"
	_, err = svc.Update(ctx, second.ID, &model.UpdatePatientRequest{CPF: &taken}, "op")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrDuplicateIdentifier))
	assert.Contains(t, err.Error(), "Maria Silva")
}

func TestUpdateRevalidatesRules(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	created, err := svc.Register(ctx, adultRequest("Alex Santos", "11144477735"), "op")
	require.NoError(t, err)

	other := model.SexOther
	_, err = svc.Update(ctx, created.ID, &model.UpdatePatientRequest{Sex: &other}, "op")
	assert.Equal(t, apperrors.ReasonSocialNameRequired, apperrors.ReasonOf(err))
}

func TestSearchSemantics(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, adultRequest("Maria Silva", "11144477735"), "op")
	require.NoError(t, err)
	_, err = svc.Register(ctx, adultRequest("Ana Maria Costa", "52998224725"), "op")
	require.NoError(t, err)

	t.Run("substring match ordered by name", func(t *testing.T) {
		results, err := svc.Search(ctx, "Maria")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Ana Maria Costa", results[0].Name)
		assert.Equal(t, "Maria Silva", results[1].Name)
	})

	t.Run("exact cpf match", func(t *testing.T) {
		results, err := svc.Search(ctx, "52998224725")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Ana Maria Costa", results[0].Name)
	})

	t.Run("formatted cpf matches the stored digits", func(t *testing.T) {
		results, err := svc.Search(ctx, "529.982.247-25")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Ana Maria Costa", results[0].Name)
	})

	t.Run("blank term returns empty without touching storage", func(t *testing.T) {
		results, err := svc.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestDeletePatientEmitsEvent(t *testing.T) {
	repo := newFakePatientRepo()
	outbox := &fakeOutboxRepo{}
	svc := NewService(repo, outbox, 0)
	ctx := context.Background()

	created, err := svc.Register(ctx, adultRequest("Maria Silva", "11144477735"), "op")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	require.Len(t, outbox.events, 2)
	assert.Equal(t, model.EventPatientDeleted, outbox.events[1].EventType)
}

func TestClassifyVulnerability(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewService(repo, &fakeOutboxRepo{}, 0)
	ctx := context.Background()

	req := adultRequest("Maria Silva", "11144477735")
	req.Homebound = true
	created, err := svc.Register(ctx, req, "op")
	require.NoError(t, err)

	vulnerable, err := svc.ClassifyVulnerability(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, vulnerable)
}
