// 과거 사례 유사도 검색 비즈니스 로직 정의
//
// 처리 흐름:
//  1. 쿼리 텍스트를 임베딩
//  2. 벡터 스토어에서 상위 k개 매치 조회
//  3. 매치 metadata를 RelatedCase로 정리 (label/note/score)
//
// 어떤 단계가 실패해도 빈 목록을 반환한다. 유사 사례가 없어도
// 파이프라인은 계속 진행되어야 하기 때문.

package service

import (
	"context"
	"log"
	"math"

	"github.com/loglens/backend/internal/model"
)

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type CaseSearcher interface {
	SearchCases(ctx context.Context, vector []float32, k int) ([]model.CaseMatch, error)
}

type RetrievalService struct {
	embedder Embedder
	searcher CaseSearcher
}

func NewRetrievalService(embedder Embedder, searcher CaseSearcher) *RetrievalService {
	return &RetrievalService{embedder: embedder, searcher: searcher}
}

// Enabled - 임베딩 클라이언트와 벡터 스토어가 모두 연결되었는지
func (s *RetrievalService) Enabled() bool {
	return s != nil && s.embedder != nil && s.searcher != nil
}

// Retrieve - 쿼리와 유사한 과거 사례를 score 내림차순으로 반환.
// 실패는 흡수하고 빈 목록을 돌려준다.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) []model.RelatedCase {
	if !s.Enabled() || k <= 0 {
		return []model.RelatedCase{}
	}

	vector, _, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		log.Printf("[retrieve_error] embed failed: %v", err)
		return []model.RelatedCase{}
	}

	matches, err := s.searcher.SearchCases(ctx, vector, k)
	if err != nil {
		log.Printf("[retrieve_error] search failed: %v", err)
		return []model.RelatedCase{}
	}

	cases := make([]model.RelatedCase, 0, len(matches))
	for _, m := range matches {
		cases = append(cases, shapeMatch(m))
	}
	return cases
}

func shapeMatch(m model.CaseMatch) model.RelatedCase {
	label := m.Metadata["title"]
	if label == "" {
		label = "related case"
	}
	note := firstNonEmpty(m.Metadata["takeaway"], m.Metadata["summary"], m.Metadata["snippet"])
	return model.RelatedCase{
		Label: label,
		Score: math.Round(m.Score*1000) / 1000,
		Note:  note,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
