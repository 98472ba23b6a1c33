package model

// 리포트 내 리스트 필드 상한 (응답 payload 크기 제한)
const (
	MaxTimelineEntries = 12
	MaxRootCauses      = 6
	MaxNextSteps       = 10
	MaxReferences      = 10
	MaxEvidenceLines   = 12
)

// TimelineEvent - 리포트 타임라인 항목
type TimelineEvent struct {
	Time    string `json:"time"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// RootCause - 추정 원인과 신뢰도 [0,1]
type RootCause struct {
	Cause      string  `json:"cause"`
	Confidence float64 `json:"confidence"`
}

// Reference - 근거 출처와 발췌문
type Reference struct {
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// IncidentReport - 완료된 job당 정확히 하나 생성되는 최종 분석 리포트
type IncidentReport struct {
	Summary           string          `json:"summary"`
	Confidence        float64         `json:"confidence"`
	Timeline          []TimelineEvent `json:"timeline"`
	ImmediateEvidence []string        `json:"immediate_evidence"`
	RootCauses        []RootCause     `json:"root_causes"`
	NextSteps         []string        `json:"next_steps"`
	RelatedCases      []string        `json:"related_cases"`
	References        []Reference     `json:"references"`
}
