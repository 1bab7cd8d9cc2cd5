package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kadu1982/sistema2-sub001/pkg/auth"
	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"
	"github.com/Kadu1982/sistema2-sub001/pkg/logger"
	"github.com/Kadu1982/sistema2-sub001/pkg/security"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
)

type fakeOperatorRepo struct {
	operators map[uuid.UUID]*model.Operator
	lastLogin map[uuid.UUID]time.Time
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{
		operators: make(map[uuid.UUID]*model.Operator),
		lastLogin: make(map[uuid.UUID]time.Time),
	}
}

func (r *fakeOperatorRepo) Create(_ context.Context, op *model.Operator) error {
	r.operators[op.ID] = op
	return nil
}

func (r *fakeOperatorRepo) Get(_ context.Context, id uuid.UUID) (*model.Operator, error) {
	op, ok := r.operators[id]
	if !ok {
		return nil, apperrors.NotFound("operator", nil)
	}
	return op, nil
}

func (r *fakeOperatorRepo) GetByLogin(_ context.Context, login string) (*model.Operator, error) {
	for _, op := range r.operators {
		if op.Login == login {
			return op, nil
		}
	}
	return nil, apperrors.NotFound("operator", nil)
}

func (r *fakeOperatorRepo) Update(_ context.Context, op *model.Operator) error {
	r.operators[op.ID] = op
	return nil
}

func (r *fakeOperatorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.operators, id)
	return nil
}

func (r *fakeOperatorRepo) List(_ context.Context) ([]*model.Operator, error) {
	return nil, nil
}

func (r *fakeOperatorRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeOperatorRepo, *model.Operator) {
	t.Helper()

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash("correct-horse-battery")
	require.NoError(t, err)

	operator := &model.Operator{
		Base:         model.Base{ID: uuid.New()},
		Login:        "maria.admin",
		PasswordHash: hash,
		Active:       true,
		Master:       true,
	}

	repo := newFakeOperatorRepo()
	repo.operators[operator.ID] = operator

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})

	return NewService(repo, jwtSvc, hasher, logger.NewLogger(nil)), repo, operator
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, repo, operator := newTestService(t)

		tokens, err := svc.Login(ctx, "maria.admin", "correct-horse-battery")
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.NotZero(t, repo.lastLogin[operator.ID])
	})

	t.Run("login is case insensitive", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Login(ctx, "  Maria.Admin ", "correct-horse-battery")
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, operator := newTestService(t)

		_, err := svc.Login(ctx, "maria.admin", "wrong")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
		assert.Zero(t, repo.lastLogin[operator.ID])
	})

	t.Run("unknown login", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Login(ctx, "nobody", "correct-horse-battery")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})

	t.Run("inactive operator", func(t *testing.T) {
		svc, _, operator := newTestService(t)
		operator.Active = false

		_, err := svc.Login(ctx, "maria.admin", "correct-horse-battery")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, _, operator := newTestService(t)

	tokens, err := svc.Login(ctx, "maria.admin", "correct-horse-battery")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, claims.OperatorID)
	assert.Equal(t, "maria.admin", claims.Login)
	assert.True(t, claims.Master)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid refresh token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tokens, err := svc.Login(ctx, "maria.admin", "correct-horse-battery")
		require.NoError(t, err)

		renewed, err := svc.Refresh(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, renewed.AccessToken)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tokens, err := svc.Login(ctx, "maria.admin", "correct-horse-battery")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, tokens.AccessToken)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})

	t.Run("deactivated operator cannot refresh", func(t *testing.T) {
		svc, _, operator := newTestService(t)
		tokens, err := svc.Login(ctx, "maria.admin", "correct-horse-battery")
		require.NoError(t, err)

		operator.Active = false
		_, err = svc.Refresh(ctx, tokens.RefreshToken)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})
}
