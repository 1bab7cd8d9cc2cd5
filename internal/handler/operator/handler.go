package operator

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kadu1982/sistema2-sub001/internal/handler"
	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/service/operator"
)

type Handler struct {
	service operator.OperatorService
}

func NewHandler(service operator.OperatorService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	operators := r.Group("/operators")
	{
		operators.POST("", h.CreateOperator)
		operators.GET("", h.ListOperators)
		operators.GET("/:id", h.GetOperator)
		operators.PATCH("/:id", h.UpdateOperator)
		operators.DELETE("/:id", h.DeleteOperator)
		operators.GET("/:id/access/:unitId", h.CheckUnitAccess)
	}
}

func (h *Handler) CreateOperator(c *gin.Context) {
	var req model.CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req, c.GetString("operatorLogin"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetOperator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid operator ID"))
		return
	}

	op, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(op))
}

func (h *Handler) UpdateOperator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid operator ID"))
		return
	}

	var req model.UpdateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req, c.GetString("operatorLogin"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteOperator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid operator ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": id}))
}

func (h *Handler) ListOperators(c *gin.Context) {
	operators, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(operators))
}

func (h *Handler) CheckUnitAccess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid operator ID"))
		return
	}
	unitID, err := uuid.Parse(c.Param("unitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid unit ID"))
		return
	}

	allowed, err := h.service.CanAccessUnit(c.Request.Context(), id, unitID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"allowed": allowed}))
}
