package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/loglens/backend/internal/service"
)

func TestCreateCaseValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var svc *service.CaseService
	r.POST("/api/v1/cases", NewCaseHandler(svc).CreateCase)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewBufferString(`{"title":"","summary":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateCaseWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var svc *service.CaseService
	r.POST("/api/v1/cases", NewCaseHandler(svc).CreateCase)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewBufferString(`{"title":"Pool exhaustion","summary":"pool timeouts under load"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
