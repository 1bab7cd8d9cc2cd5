package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by operator session tokens.
type Claims struct {
	OperatorID uuid.UUID
	Login      string
	Master     bool
}

type JWTService interface {
	GenerateAccessToken(operatorID uuid.UUID, login string, master bool) (string, error)
	GenerateRefreshToken(operatorID uuid.UUID) (string, error)
	ValidateToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
}

type Config struct {
	Secret             string
	RefreshSecret      string
	ExpiryHours        int
	RefreshExpiryHours int
}

type jwtService struct {
	cfg Config
}

func NewJWTService(cfg Config) JWTService {
	return &jwtService{cfg: cfg}
}

func (s *jwtService) GenerateAccessToken(operatorID uuid.UUID, login string, master bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": operatorID.String(),
		"login":       login,
		"master":      master,
		"iat":         now.Unix(),
		"exp":         now.Add(time.Duration(s.cfg.ExpiryHours) * time.Hour).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *jwtService) GenerateRefreshToken(operatorID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": operatorID.String(),
		"iat":         now.Unix(),
		"exp":         now.Add(time.Duration(s.cfg.RefreshExpiryHours) * time.Hour).Unix(),
	})
	return token.SignedString([]byte(s.cfg.RefreshSecret))
}

func (s *jwtService) ValidateToken(tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr, s.cfg.Secret)
	if err != nil {
		return nil, err
	}

	rawID, ok := claims["operator_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	operatorID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid operator ID in token")
	}

	login, _ := claims["login"].(string)
	master, _ := claims["master"].(bool)

	return &Claims{
		OperatorID: operatorID,
		Login:      login,
		Master:     master,
	}, nil
}

func (s *jwtService) ValidateRefreshToken(tokenStr string) (uuid.UUID, error) {
	claims, err := s.parse(tokenStr, s.cfg.RefreshSecret)
	if err != nil {
		return uuid.Nil, err
	}

	rawID, ok := claims["operator_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid refresh token claims")
	}
	return uuid.Parse(rawID)
}

func (s *jwtService) parse(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
