package model

// 로그 레벨 상수 (정규화 후 이 여섯 가지만 사용)
const (
	LevelError = "ERROR"
	LevelWarn  = "WARN"
	LevelInfo  = "INFO"
	LevelDebug = "DEBUG"
	LevelTrace = "TRACE"
)

// LogEvent - 로그 한 줄을 정규화한 이벤트
type LogEvent struct {
	Time    string `json:"time,omitempty"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// TriageResult - 업로드된 로그 묶음의 triage 결과
//
// SignalLines와 QueryText는 job에 캐시되어 이후 Q&A 단계에서 재사용됩니다.
type TriageResult struct {
	Events      []LogEvent     `json:"events"`
	SignalLines []string       `json:"signal_lines"`
	LevelCounts map[string]int `json:"level_counts"`
	QueryText   string         `json:"query_text"`
	Hint        string         `json:"hint,omitempty"`
}
