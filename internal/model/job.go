package model

import "time"

// 분석 파이프라인 단계
//
// queued → triage → retrieve → root_cause → synthesize → done
// error는 진행 중 어느 단계에서도 도달 가능. done/error는 최종 상태.
const (
	StageQueued     = "queued"
	StageTriage     = "triage"
	StageRetrieve   = "retrieve"
	StageRootCause  = "root_cause"
	StageSynthesize = "synthesize"
	StageDone       = "done"
	StageError      = "error"
)

// StageProgress - 단계별 진행률(%). UI 진행바 표시에 사용.
func StageProgress(stage string) int {
	switch stage {
	case StageQueued:
		return 0
	case StageTriage:
		return 20
	case StageRetrieve:
		return 50
	case StageRootCause:
		return 75
	case StageSynthesize:
		return 90
	case StageDone, StageError:
		return 100
	}
	return 0
}

// IsTerminalStage - done/error 여부 (최종 상태에서는 더 이상 전이 없음)
func IsTerminalStage(stage string) bool {
	return stage == StageDone || stage == StageError
}

// Job - 분석 작업 티켓. 파이프라인 goroutine만 쓰기, 나머지는 읽기 전용.
type Job struct {
	JobID     string    `json:"job_id"`
	Stage     string    `json:"stage"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Files     []string  `json:"files,omitempty"`

	// Q&A 단계에서 재사용하는 캐시 (status 응답에는 포함하지 않음)
	CachedSignalLines  []string `json:"-"`
	CachedRelatedCases []string `json:"-"`
	QueryPath          string   `json:"-"`
}

// AnalysisJobStatus - GET /status/{job_id} 응답
type AnalysisJobStatus struct {
	JobID     string    `json:"job_id"`
	Stage     string    `json:"stage"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalyzeResponse - POST /analyze 응답
type AnalyzeResponse struct {
	JobID string `json:"job_id"`
}
