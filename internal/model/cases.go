package model

// CaseRequest - 과거 사례(postmortem 요약) 등록 요청
type CaseRequest struct {
	Title    string `json:"title"`
	Takeaway string `json:"takeaway"`
	Summary  string `json:"summary"`
}

// CaseResponse - 사례 등록 결과
type CaseResponse struct {
	Status string `json:"status"`
	CaseID int64  `json:"case_id"`
	Model  string `json:"model"`
}
