package handler

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/loglens/backend/internal/model"
	"github.com/loglens/backend/internal/service"
	"github.com/loglens/backend/internal/store"
)

type AnalysisHandler struct {
	svc *service.AnalysisService
}

func NewAnalysisHandler(svc *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// Analyze godoc
// @Summary Upload log files and start an analysis job
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Log files (.log/.txt/.json)"
// @Success 200 {object} model.AnalyzeResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "no files uploaded"})
		return
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f.Filename))
	}

	job, err := h.svc.CreateJob(names)
	if err != nil {
		if errors.Is(err, service.ErrNoFiles) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}

	dir := h.svc.JobDir(job.JobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	for _, f := range files {
		dst := filepath.Join(dir, filepath.Base(f.Filename))
		if err := c.SaveUploadedFile(f, dst); err != nil {
			// 일부 파일 저장 실패는 치명적이지 않음 (triage가 남은 파일로 진행)
			log.Printf("[analyze] failed to save %s for job=%s: %v", f.Filename, job.JobID, err)
		}
	}

	h.svc.Start(job.JobID)
	c.JSON(http.StatusOK, model.AnalyzeResponse{JobID: job.JobID})
}

// Status godoc
// @Summary Get analysis job progress
// @Tags analysis
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} model.AnalysisJobStatus
// @Failure 404 {object} model.ErrorResponse
// @Router /status/{job_id} [get]
func (h *AnalysisHandler) Status(c *gin.Context) {
	status, err := h.svc.Status(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Result godoc
// @Summary Get the finished incident report
// @Tags analysis
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} model.IncidentReport
// @Failure 404 {object} model.ErrorResponse
// @Router /result/{job_id} [get]
func (h *AnalysisHandler) Result(c *gin.Context) {
	report, err := h.svc.Result(c.Param("job_id"))
	if err != nil {
		// unknown job과 아직 미완료는 모두 404지만 메시지로 구분
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DebugQuery godoc
// @Summary Get the exact search text used for retrieval
// @Tags analysis
// @Produce plain
// @Param job_id path string true "Job ID"
// @Success 200 {string} string
// @Failure 404 {object} model.ErrorResponse
// @Router /debug/query/{job_id} [get]
func (h *AnalysisHandler) DebugQuery(c *gin.Context) {
	text, err := h.svc.QueryText(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// Ask godoc
// @Summary Ask a grounded follow-up question about a job
// @Tags analysis
// @Accept json
// @Produce json
// @Param job_id path string true "Job ID"
// @Param request body model.AskRequest true "Question payload"
// @Success 200 {object} model.Answer
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /ask/{job_id} [post]
func (h *AnalysisHandler) Ask(c *gin.Context) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "question is required"})
		return
	}

	answer, err := h.svc.Ask(c.Request.Context(), c.Param("job_id"), req.Question)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}
