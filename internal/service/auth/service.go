package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Kadu1982/sistema2-sub001/pkg/auth"
	apperrors "github.com/Kadu1982/sistema2-sub001/pkg/errors"
	"github.com/Kadu1982/sistema2-sub001/pkg/logger"
	"github.com/Kadu1982/sistema2-sub001/pkg/security"

	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
)

type AuthService interface {
	Login(ctx context.Context, login, password string) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

type Service struct {
	operators repository.OperatorRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	logger    *logger.Logger
}

func NewService(operators repository.OperatorRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, logger *logger.Logger) *Service {
	return &Service{
		operators: operators,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		logger:    logger,
	}
}

func (s *Service) Login(ctx context.Context, login, password string) (*model.TokenResponse, error) {
	operator, err := s.operators.GetByLogin(ctx, strings.TrimSpace(strings.ToLower(login)))
	if err != nil {
		// Do not reveal whether the login exists.
		return nil, apperrors.Unauthorized(err)
	}
	if !operator.Active {
		return nil, apperrors.Unauthorized(nil)
	}

	if err := s.hasher.Compare(operator.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	if err := s.operators.UpdateLastLogin(ctx, operator.ID, time.Now()); err != nil {
		s.logger.Warn("failed to update last login", "operator", operator.Login, "error", err.Error())
	}

	return s.generateTokens(operator)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	operatorID, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	operator, err := s.operators.Get(ctx, operatorID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if !operator.Active {
		return nil, apperrors.Unauthorized(nil)
	}

	return s.generateTokens(operator)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) generateTokens(operator *model.Operator) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(operator.ID, operator.Login, operator.Master)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(operator.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
