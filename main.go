package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/loglens/backend/internal/client"
	"github.com/loglens/backend/internal/config"
	"github.com/loglens/backend/internal/db"
	"github.com/loglens/backend/internal/handler"
	"github.com/loglens/backend/internal/service"
	"github.com/loglens/backend/internal/store"
	"github.com/loglens/backend/internal/triage"
)

func main() {
	// .env는 있으면 로드 (로컬 개발용, 없어도 무방)
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	cfg := config.Load()

	jobs := store.NewMemoryJobStore()
	results := store.NewMemoryResultStore()
	parser := triage.NewParser()

	// reasoning collaborator (credential 없으면 결정적 fallback 모드로 동작)
	var llm service.ReasoningClient
	if rc, err := client.NewReasoningClient(cfg.AI); err != nil {
		log.Printf("[genai] reasoning disabled: %v", err)
	} else {
		llm = rc
	}
	synthSvc := service.NewSynthesisService(llm)

	// embedding collaborator + 벡터 스토어 (없으면 retrieval은 빈 목록 반환)
	var embedder service.Embedder
	if ec, err := client.NewEmbeddingClient(cfg.AI); err != nil {
		log.Printf("[genai] embedding disabled: %v", err)
	} else {
		embedder = ec
	}

	var searcher service.CaseSearcher
	var caseRepo service.CaseRepo
	ctx := context.Background()
	if pool, err := db.NewPostgresPool(ctx, cfg.Postgres); err != nil {
		log.Printf("[postgres] case store disabled: %v", err)
	} else {
		defer pool.Close()
		caseDB := db.New(pool)
		searcher = caseDB
		caseRepo = caseDB
	}

	retrievalSvc := service.NewRetrievalService(embedder, searcher)
	caseSvc := service.NewCaseService(caseRepo, embedder)
	analysisSvc := service.NewAnalysisService(jobs, results, parser, retrievalSvc, synthSvc, cfg.Upload.Root)

	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins))

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)
	router.GET("/healthz", handler.Healthz(cfg))

	analysisHandler := handler.NewAnalysisHandler(analysisSvc)
	router.POST("/analyze", analysisHandler.Analyze)
	router.GET("/status/:job_id", analysisHandler.Status)
	router.GET("/result/:job_id", analysisHandler.Result)
	router.GET("/debug/query/:job_id", analysisHandler.DebugQuery)
	router.POST("/ask/:job_id", analysisHandler.Ask)

	router.POST("/api/v1/cases", handler.NewCaseHandler(caseSvc).CreateCase)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("[server] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] %v", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	log.Printf("[server] shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
}
