package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loglens/backend/internal/model"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	return f.vec, "text-embedding-004", f.err
}

type fakeSearcher struct {
	matches []model.CaseMatch
	err     error
}

func (f *fakeSearcher) SearchCases(ctx context.Context, vector []float32, k int) ([]model.CaseMatch, error) {
	return f.matches, f.err
}

func TestRetrieveShapesMatches(t *testing.T) {
	searcher := &fakeSearcher{matches: []model.CaseMatch{
		{Score: 0.87345, Metadata: map[string]string{"title": "Pool timeout postmortem", "takeaway": "raise pool size"}},
		{Score: 0.5, Metadata: map[string]string{"summary": "disk filled up"}},
		{Score: 0.25, Metadata: map[string]string{"snippet": "raw snippet"}},
	}}
	svc := NewRetrievalService(&fakeEmbedder{vec: []float32{0.1}}, searcher)

	got := svc.Retrieve(context.Background(), "query", 3)

	want := []model.RelatedCase{
		{Label: "Pool timeout postmortem", Score: 0.873, Note: "raise pool size"},
		{Label: "related case", Score: 0.5, Note: "disk filled up"},
		{Label: "related case", Score: 0.25, Note: "raw snippet"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("related cases mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrieveAbsorbsFailures(t *testing.T) {
	tests := []struct {
		name string
		svc  *RetrievalService
	}{
		{"embed failure", NewRetrievalService(&fakeEmbedder{err: errors.New("quota")}, &fakeSearcher{})},
		{"search failure", NewRetrievalService(&fakeEmbedder{vec: []float32{0.1}}, &fakeSearcher{err: errors.New("down")})},
		{"disabled", NewRetrievalService(nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.svc.Retrieve(context.Background(), "query", 3)
			if len(got) != 0 {
				t.Fatalf("expected empty result, got %v", got)
			}
		})
	}
}

func TestRelatedCaseString(t *testing.T) {
	rc := model.RelatedCase{Label: "Case A", Score: 0.873, Note: "note"}
	if rc.String() != "Case A (score 0.873): note" {
		t.Fatalf("unexpected string: %q", rc.String())
	}
	empty := model.RelatedCase{Label: "Case B", Score: 0.5}
	if empty.String() != "Case B (score 0.500):" {
		t.Fatalf("unexpected string: %q", empty.String())
	}
}
