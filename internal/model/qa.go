package model

// AskRequest - POST /ask/{job_id} 요청
type AskRequest struct {
	Question string `json:"question"`
}

// Answer - 근거 기반 Q&A 응답 (job에 저장하지 않음)
type Answer struct {
	Answer     string      `json:"answer"`
	Confidence float64     `json:"confidence"`
	Citations  []Reference `json:"citations"`
}
