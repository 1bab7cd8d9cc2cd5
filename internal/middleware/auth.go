package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/Kadu1982/sistema2-sub001/internal/handler"
	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/repository"
	"github.com/Kadu1982/sistema2-sub001/internal/service/auth"
)

type AuthMiddleware struct {
	authService auth.AuthService
	operators   repository.OperatorRepository
	scopeCache  *cache.Cache
}

func NewAuthMiddleware(authService auth.AuthService, operators repository.OperatorRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		operators:   operators,
		scopeCache:  cache.New(5*time.Minute, 15*time.Minute),
	}
}

// Authenticate verifies the JWT token and sets operator info in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set("operatorID", claims.OperatorID.String())
		c.Set("operatorLogin", claims.Login)
		c.Set("operatorMaster", claims.Master)
		c.Next()
	}
}

// RequireUnitAccess blocks operators outside the unit named in the request
// header. Master operators pass unconditionally.
func (m *AuthMiddleware) RequireUnitAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("operatorMaster") {
			c.Next()
			return
		}

		rawUnit := c.GetHeader("X-Unit-ID")
		if rawUnit == "" {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unit ID header is required"))
			c.Abort()
			return
		}
		unitID, err := uuid.Parse(rawUnit)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid unit ID"))
			c.Abort()
			return
		}

		operator, err := m.lookupOperator(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unknown operator"))
			c.Abort()
			return
		}

		if !operator.CanAccess(unitID) {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("operator has no access to this unit"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) lookupOperator(c *gin.Context) (*model.Operator, error) {
	operatorID := c.GetString("operatorID")
	if cached, found := m.scopeCache.Get(operatorID); found {
		return cached.(*model.Operator), nil
	}

	id, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, err
	}
	operator, err := m.operators.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	m.scopeCache.Set(operatorID, operator, cache.DefaultExpiration)
	return operator, nil
}
