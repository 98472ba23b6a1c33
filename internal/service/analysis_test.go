package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loglens/backend/internal/model"
	"github.com/loglens/backend/internal/store"
	"github.com/loglens/backend/internal/triage"
)

type fakeParser struct {
	result *model.TriageResult
}

func (f *fakeParser) ParseDir(dir string) *model.TriageResult {
	return f.result
}

type fakeRetriever struct {
	cases []model.RelatedCase
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) []model.RelatedCase {
	return f.cases
}

type fakeSynthesizer struct {
	lastSignals []string
	lastRelated []string
	panicOnRun  bool
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, queryText string, signalLines, relatedCases []string) model.IncidentReport {
	if f.panicOnRun {
		panic("synthesizer blew up")
	}
	f.lastSignals = signalLines
	f.lastRelated = relatedCases
	return model.IncidentReport{Summary: "synthesized", Confidence: 0.9}
}

func (f *fakeSynthesizer) Answer(ctx context.Context, question string, signalLines, relatedCases []string) model.Answer {
	f.lastSignals = signalLines
	f.lastRelated = relatedCases
	return model.Answer{Answer: "answered", Confidence: 0.5, Citations: []model.Reference{}}
}

func newTestService(t *testing.T, parser TriageParser, retriever Retriever, synth Synthesizer) (*AnalysisService, *store.MemoryJobStore) {
	t.Helper()
	jobs := store.NewMemoryJobStore()
	results := store.NewMemoryResultStore()
	return NewAnalysisService(jobs, results, parser, retriever, synth, t.TempDir()), jobs
}

func TestCreateJobRejectsEmptyFileSet(t *testing.T) {
	svc, _ := newTestService(t, &fakeParser{}, &fakeRetriever{}, &fakeSynthesizer{})

	if _, err := svc.CreateJob(nil); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestPipelineCompletesJob(t *testing.T) {
	tr := &model.TriageResult{
		SignalLines: []string{"app.log: db pool exhausted"},
		QueryText:   "db pool exhausted retry ok",
	}
	related := []model.RelatedCase{{Label: "Pool postmortem", Score: 0.9, Note: "raise pool size"}}
	synth := &fakeSynthesizer{}
	svc, _ := newTestService(t, &fakeParser{result: tr}, &fakeRetriever{cases: related}, synth)

	job, err := svc.CreateJob([]string{"app.log"})
	if err != nil {
		t.Fatal(err)
	}
	svc.runPipeline(job.JobID)

	status, err := svc.Status(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Stage != model.StageDone || status.Progress != 100 {
		t.Fatalf("expected done/100, got %s/%d", status.Stage, status.Progress)
	}

	report, err := svc.Result(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	wantRelated := []string{"Pool postmortem (score 0.900): raise pool size"}
	if diff := cmp.Diff(wantRelated, report.RelatedCases); diff != "" {
		t.Fatalf("related cases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tr.SignalLines, synth.lastSignals); diff != "" {
		t.Fatalf("synthesizer signal lines mismatch (-want +got):\n%s", diff)
	}

	queryText, err := svc.QueryText(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if queryText != tr.QueryText {
		t.Fatalf("query artifact mismatch: %q", queryText)
	}
}

func TestPipelineRetrievalFailureStillReachesDone(t *testing.T) {
	tr := &model.TriageResult{SignalLines: []string{"a.log: boom"}, QueryText: "boom"}
	// 임베딩이 항상 실패하는 retriever: 파이프라인은 빈 사례 목록으로 계속
	retriever := NewRetrievalService(&fakeEmbedder{err: errors.New("always down")}, &fakeSearcher{})
	svc, _ := newTestService(t, &fakeParser{result: tr}, retriever, &fakeSynthesizer{})

	job, err := svc.CreateJob([]string{"a.log"})
	if err != nil {
		t.Fatal(err)
	}
	svc.runPipeline(job.JobID)

	status, _ := svc.Status(job.JobID)
	if status.Stage != model.StageDone {
		t.Fatalf("expected done, got %s", status.Stage)
	}
	report, err := svc.Result(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.RelatedCases) != 0 {
		t.Fatalf("expected no related cases, got %v", report.RelatedCases)
	}
}

func TestPipelinePanicMovesJobToError(t *testing.T) {
	tr := &model.TriageResult{QueryText: "q"}
	svc, _ := newTestService(t, &fakeParser{result: tr}, &fakeRetriever{}, &fakeSynthesizer{panicOnRun: true})

	job, err := svc.CreateJob([]string{"a.log"})
	if err != nil {
		t.Fatal(err)
	}
	svc.runPipeline(job.JobID)

	status, _ := svc.Status(job.JobID)
	if status.Stage != model.StageError || status.Progress != 100 {
		t.Fatalf("expected error/100, got %s/%d", status.Stage, status.Progress)
	}
	if !strings.HasPrefix(status.Message, "Error:") {
		t.Fatalf("expected error message, got %q", status.Message)
	}
	if _, err := svc.Result(job.JobID); !errors.Is(err, store.ErrResultNotReady) {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
}

func TestTerminalStageIsFinal(t *testing.T) {
	tr := &model.TriageResult{QueryText: "q"}
	svc, jobs := newTestService(t, &fakeParser{result: tr}, &fakeRetriever{}, &fakeSynthesizer{})

	job, err := svc.CreateJob([]string{"a.log"})
	if err != nil {
		t.Fatal(err)
	}
	svc.runPipeline(job.JobID)

	svc.updateStage(job.JobID, model.StageTriage, "should not apply")

	got, err := jobs.Get(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stage != model.StageDone || got.Message != "Complete" {
		t.Fatalf("terminal state was mutated: %s / %q", got.Stage, got.Message)
	}
}

func TestBlankFilesJobCompletesWithPlaceholderQuery(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	results := store.NewMemoryResultStore()
	uploadRoot := t.TempDir()
	// credential이 전혀 없는 구성: 실제 파서 + disabled 합성
	svc := NewAnalysisService(jobs, results, triage.NewParser(), NewRetrievalService(nil, nil), NewSynthesisService(nil), uploadRoot)

	job, err := svc.CreateJob([]string{"blank.log"})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(svc.JobDir(job.JobID), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(svc.JobDir(job.JobID), "blank.log"), []byte("\n\n   \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc.runPipeline(job.JobID)

	status, _ := svc.Status(job.JobID)
	if status.Stage != model.StageDone {
		t.Fatalf("expected done, got %s", status.Stage)
	}
	queryText, err := svc.QueryText(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if queryText != triage.PlaceholderQuery {
		t.Fatalf("expected placeholder query, got %q", queryText)
	}
	report, err := svc.Result(job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary != summaryDisabled {
		t.Fatalf("expected disabled-mode summary, got %q", report.Summary)
	}
	if report.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", report.Confidence)
	}
}

func TestAskFallsBackToQueryArtifact(t *testing.T) {
	tr := &model.TriageResult{SignalLines: []string{}, QueryText: "raw query text for fallback"}
	synth := &fakeSynthesizer{}
	svc, _ := newTestService(t, &fakeParser{result: tr}, &fakeRetriever{}, synth)

	job, err := svc.CreateJob([]string{"a.log"})
	if err != nil {
		t.Fatal(err)
	}
	svc.runPipeline(job.JobID)

	if _, err := svc.Ask(context.Background(), job.JobID, "what happened?"); err != nil {
		t.Fatal(err)
	}
	want := []string{"raw query text for fallback"}
	if diff := cmp.Diff(want, synth.lastSignals); diff != "" {
		t.Fatalf("fallback signal lines mismatch (-want +got):\n%s", diff)
	}
}

func TestAskUnknownJob(t *testing.T) {
	svc, _ := newTestService(t, &fakeParser{}, &fakeRetriever{}, &fakeSynthesizer{})

	if _, err := svc.Ask(context.Background(), "nope", "q"); !errors.Is(err, store.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
