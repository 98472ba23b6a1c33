package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loglens/backend/internal/config"
	"github.com/loglens/backend/internal/model"
)

// 헬스체크 엔드포인트
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// 루트 엔드포인트
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: "loglens backend is running",
	})
}

// Healthz - 생존 여부 + 필수 credential 설정 여부
func Healthz(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthResponse{
			OK: true,
			Env: map[string]bool{
				"AI_API_KEY_set": cfg.AI.APIKey != "",
				"POSTGRES_set":   cfg.Postgres.DatabaseURL != "" || (cfg.Postgres.User != "" && cfg.Postgres.Database != ""),
			},
		})
	}
}
