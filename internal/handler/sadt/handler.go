package sadt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kadu1982/sistema2-sub001/internal/handler"
	"github.com/Kadu1982/sistema2-sub001/internal/model"
	"github.com/Kadu1982/sistema2-sub001/internal/service/sadt"
)

type Handler struct {
	service sadt.SadtService
}

func NewHandler(service sadt.SadtService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	docs := r.Group("/sadt")
	{
		docs.POST("", h.IssueDocument)
		docs.GET("", h.ListDocuments)
		docs.GET("/:id", h.GetDocument)
		docs.GET("/:id/pdf", h.GetDocumentPDF)
		docs.POST("/:id/cancel", h.CancelDocument)
		docs.POST("/:id/perform", h.PerformDocument)
		docs.POST("/:id/procedures/:procedureId/execute", h.ExecuteProcedure)
	}
}

func (h *Handler) IssueDocument(c *gin.Context) {
	var req model.IssueSadtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doc, err := h.service.Issue(c.Request.Context(), &req, c.GetString("operatorLogin"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doc))
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid document ID"))
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

// GetDocumentPDF serves the stored rendering, producing it on demand when the
// issue-time render did not complete.
func (h *Handler) GetDocumentPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid document ID"))
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	if len(doc.Payload) == 0 {
		doc, err = h.service.Render(c.Request.Context(), id)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", doc.Number))
	c.Data(http.StatusOK, "application/pdf", doc.Payload)
}

func (h *Handler) CancelDocument(c *gin.Context) {
	h.transition(c, model.SadtStatusCancelled)
}

func (h *Handler) PerformDocument(c *gin.Context) {
	h.transition(c, model.SadtStatusPerformed)
}

func (h *Handler) transition(c *gin.Context, target model.SadtStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid document ID"))
		return
	}

	doc, err := h.service.Transition(c.Request.Context(), id, target)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

func (h *Handler) ExecuteProcedure(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid document ID"))
		return
	}
	procedureID, err := uuid.Parse(c.Param("procedureId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid procedure ID"))
		return
	}

	var req model.ExecuteProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ExecuteProcedure(c.Request.Context(), id, procedureID, req.Notes); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"executed": procedureID}))
}

func (h *Handler) ListDocuments(c *gin.Context) {
	filters := &model.SadtFilters{
		Type:   model.SadtType(c.Query("type")),
		Status: model.SadtStatus(c.Query("status")),
	}

	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
			return
		}
		filters.PatientID = &patientID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from timestamp"))
			return
		}
		filters.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to timestamp"))
			return
		}
		filters.To = to
	}

	docs, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(docs))
}
