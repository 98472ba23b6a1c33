// 분석 job 오케스트레이터 정의
//
// 처리 흐름 (job당 goroutine 하나, 단계는 순차 실행):
//  1. TRIAGE     — 업로드된 로그에서 signal line과 검색 쿼리 추출
//  2. RETRIEVE   — 벡터 스토어에서 유사 과거 사례 조회 (실패해도 계속)
//  3. ROOT_CAUSE — 진행률 표시용 단계 (별도 연산 없음, UI 계약 유지)
//  4. SYNTHESIZE — 최종 인시던트 리포트 합성
//
// signal line과 유사 사례는 job에 캐시되어 이후 /ask에서 재사용된다.
// 예기치 못한 실패는 해당 job만 error 상태로 보내고 서버는 계속 동작한다.

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loglens/backend/internal/model"
	"github.com/loglens/backend/internal/store"
)

const (
	queryArtifactName = "triage_query.txt"
	relatedCaseLimit  = 3
	rawQueryFallback  = 800 // /ask에서 signal line이 없을 때 쿼리 텍스트에서 가져올 최대 길이
)

var (
	ErrNoFiles           = errors.New("no files uploaded")
	ErrQueryNotAvailable = errors.New("query text not available for this job")
)

type TriageParser interface {
	ParseDir(dir string) *model.TriageResult
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) []model.RelatedCase
}

type Synthesizer interface {
	Synthesize(ctx context.Context, queryText string, signalLines, relatedCases []string) model.IncidentReport
	Answer(ctx context.Context, question string, signalLines, relatedCases []string) model.Answer
}

type AnalysisService struct {
	jobs       store.JobStore
	results    store.ResultStore
	parser     TriageParser
	retriever  Retriever
	synth      Synthesizer
	uploadRoot string
}

func NewAnalysisService(jobs store.JobStore, results store.ResultStore, parser TriageParser, retriever Retriever, synth Synthesizer, uploadRoot string) *AnalysisService {
	return &AnalysisService{
		jobs:       jobs,
		results:    results,
		parser:     parser,
		retriever:  retriever,
		synth:      synth,
		uploadRoot: uploadRoot,
	}
}

// CreateJob - job 티켓 생성. 파일이 하나도 없으면 파이프라인에
// 들어가기 전에 동기적으로 거부한다.
func (s *AnalysisService) CreateJob(filenames []string) (model.Job, error) {
	if len(filenames) == 0 {
		return model.Job{}, ErrNoFiles
	}
	now := time.Now().UTC()
	job := model.Job{
		JobID:     uuid.NewString(),
		Stage:     model.StageQueued,
		Progress:  model.StageProgress(model.StageQueued),
		Message:   "Queued",
		CreatedAt: now,
		UpdatedAt: now,
		Files:     filenames,
	}
	s.jobs.Create(job)
	return job, nil
}

// JobDir - job의 업로드 파일이 저장되는 디렉터리
func (s *AnalysisService) JobDir(jobID string) string {
	return filepath.Join(s.uploadRoot, jobID)
}

// Start - 파이프라인을 백그라운드로 시작. 제출 호출을 막지 않는다.
func (s *AnalysisService) Start(jobID string) {
	go s.runPipeline(jobID)
}

func (s *AnalysisService) runPipeline(jobID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[pipeline_error] job=%s: %v", jobID, r)
			s.updateStage(jobID, model.StageError, fmt.Sprintf("Error: %v", r))
		}
	}()

	ctx := context.Background()

	// ----- Step 1: TRIAGE -----
	s.updateStage(jobID, model.StageTriage, "Reading files and extracting signals…")
	tr := s.parser.ParseDir(s.JobDir(jobID))
	if tr.Hint != "" {
		log.Printf("[triage] hint for job=%s: %s", jobID, tr.Hint)
	}

	queryPath := s.writeQueryArtifact(jobID, tr.QueryText)
	if err := s.jobs.Update(jobID, func(j *model.Job) {
		j.CachedSignalLines = tr.SignalLines
		j.QueryPath = queryPath
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		log.Printf("[triage] failed to cache triage result for job=%s: %v", jobID, err)
	}

	// ----- Step 2: RETRIEVE (실패는 흡수, 빈 사례 목록으로 계속) -----
	s.updateStage(jobID, model.StageRetrieve, "Retrieving similar past incidents…")
	var related []model.RelatedCase
	if s.retriever != nil {
		related = s.retriever.Retrieve(ctx, tr.QueryText, relatedCaseLimit)
	}
	relatedLines := make([]string, 0, len(related))
	for _, rc := range related {
		relatedLines = append(relatedLines, rc.String())
	}
	log.Printf("[related_cases] job=%s: %d items", jobID, len(relatedLines))
	if err := s.jobs.Update(jobID, func(j *model.Job) {
		j.CachedRelatedCases = relatedLines
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		log.Printf("[retrieve] failed to cache related cases for job=%s: %v", jobID, err)
	}

	// ----- UI 진행률 표시용 단계 -----
	s.updateStage(jobID, model.StageRootCause, "Evaluating hypotheses…")

	// ----- Step 3: SYNTHESIZE -----
	s.updateStage(jobID, model.StageSynthesize, "Compiling incident summary…")
	report := s.synth.Synthesize(ctx, tr.QueryText, tr.SignalLines, relatedLines)
	report.RelatedCases = relatedLines
	s.results.Put(jobID, report)

	s.updateStage(jobID, model.StageDone, "Complete")
}

// updateStage - 단계/진행률/메시지를 원자적으로 갱신.
// done/error에 도달한 job은 더 이상 전이하지 않는다.
func (s *AnalysisService) updateStage(jobID, stage, message string) {
	err := s.jobs.Update(jobID, func(j *model.Job) {
		if model.IsTerminalStage(j.Stage) {
			return
		}
		j.Stage = stage
		j.Progress = model.StageProgress(stage)
		j.Message = message
		j.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		log.Printf("[pipeline] failed to update job=%s to stage=%s: %v", jobID, stage, err)
	}
}

// writeQueryArtifact - 벡터 검색에 실제 사용한 쿼리 텍스트를 job 디렉터리에
// 기록 (/debug/query에서 그대로 제공). 실패해도 파이프라인은 계속.
func (s *AnalysisService) writeQueryArtifact(jobID, queryText string) string {
	dir := s.JobDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[triage] could not create job dir: %v", err)
		return ""
	}
	path := filepath.Join(dir, queryArtifactName)
	if err := os.WriteFile(path, []byte(queryText), 0o644); err != nil {
		log.Printf("[triage] could not write query file: %v", err)
		return ""
	}
	log.Printf("[triage] wrote query to %s (%d chars)", path, len(queryText))
	return path
}

// Status - 현재 job 상태 조회
func (s *AnalysisService) Status(jobID string) (model.AnalysisJobStatus, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return model.AnalysisJobStatus{}, err
	}
	return model.AnalysisJobStatus{
		JobID:     job.JobID,
		Stage:     job.Stage,
		Progress:  job.Progress,
		Message:   job.Message,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}, nil
}

// Result - 완료된 job의 리포트 조회.
// job이 없으면 ErrJobNotFound, 아직 리포트가 없으면 ErrResultNotReady.
func (s *AnalysisService) Result(jobID string) (model.IncidentReport, error) {
	if _, err := s.jobs.Get(jobID); err != nil {
		return model.IncidentReport{}, err
	}
	report, ok := s.results.Get(jobID)
	if !ok {
		return model.IncidentReport{}, store.ErrResultNotReady
	}
	return report, nil
}

// QueryText - /debug/query용 쿼리 아티팩트 원문
func (s *AnalysisService) QueryText(jobID string) (string, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return "", err
	}
	if job.QueryPath == "" {
		return "", ErrQueryNotAvailable
	}
	data, err := os.ReadFile(job.QueryPath)
	if err != nil {
		return "", ErrQueryNotAvailable
	}
	return string(data), nil
}

// Ask - 캐시된 signal line과 유사 사례를 근거로 질문에 답변.
// signal line 캐시가 없으면 저장된 쿼리 텍스트 앞부분으로 대체한다.
func (s *AnalysisService) Ask(ctx context.Context, jobID, question string) (model.Answer, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return model.Answer{}, err
	}

	signalLines := job.CachedSignalLines
	if len(signalLines) == 0 {
		if text, err := s.QueryText(jobID); err == nil {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				if len(trimmed) > rawQueryFallback {
					trimmed = trimmed[:rawQueryFallback]
				}
				signalLines = []string{trimmed}
			}
		}
	}

	return s.synth.Answer(ctx, question, signalLines, job.CachedRelatedCases), nil
}
