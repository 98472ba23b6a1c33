package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loglens/backend/internal/model"
	"github.com/loglens/backend/internal/service"
)

type CaseHandler struct {
	svc *service.CaseService
}

func NewCaseHandler(svc *service.CaseService) *CaseHandler {
	return &CaseHandler{svc: svc}
}

// CreateCase godoc
// @Summary Seed a historical incident case into the vector store
// @Tags cases
// @Accept json
// @Produce json
// @Param request body model.CaseRequest true "Incident case payload"
// @Success 200 {object} model.CaseResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/cases [post]
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req model.CaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Title == "" || req.Summary == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "title and summary are required"})
		return
	}
	id, embedModel, err := h.svc.CreateCase(c.Request.Context(), req.Title, req.Takeaway, req.Summary)
	if err != nil {
		if errors.Is(err, service.ErrCaseStoreDisabled) {
			c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.CaseResponse{Status: "success", CaseID: id, Model: embedModel})
}
