package service

import (
	"context"
	"errors"
	"fmt"
)

var ErrCaseStoreDisabled = errors.New("case store is not configured")

type CaseRepo interface {
	InsertCase(ctx context.Context, title, takeaway, summary, embedModel string, vector []float32) (int64, error)
}

type CaseService struct {
	repo     CaseRepo
	embedder Embedder
}

func NewCaseService(repo CaseRepo, embedder Embedder) *CaseService {
	return &CaseService{repo: repo, embedder: embedder}
}

// CreateCase - 과거 사례 요약을 임베딩해서 벡터 스토어에 저장
func (s *CaseService) CreateCase(ctx context.Context, title, takeaway, summary string) (int64, string, error) {
	if s == nil || s.repo == nil || s.embedder == nil {
		return 0, "", ErrCaseStoreDisabled
	}
	if title == "" || summary == "" {
		return 0, "", fmt.Errorf("title and summary are required")
	}
	vector, embedModel, err := s.embedder.EmbedText(ctx, summary)
	if err != nil {
		return 0, embedModel, err
	}
	id, err := s.repo.InsertCase(ctx, title, takeaway, summary, embedModel, vector)
	return id, embedModel, err
}
