package model

import "fmt"

// CaseMatch - 벡터 스토어가 돌려주는 원본 매치
type CaseMatch struct {
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// RelatedCase - 유사 과거 사례의 읽기 전용 투영
type RelatedCase struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

// String - 리포트/프롬프트에 넣는 한 줄 표현
func (c RelatedCase) String() string {
	if c.Note == "" {
		return fmt.Sprintf("%s (score %.3f):", c.Label, c.Score)
	}
	return fmt.Sprintf("%s (score %.3f): %s", c.Label, c.Score, c.Note)
}
