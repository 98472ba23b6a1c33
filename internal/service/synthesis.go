// 인시던트 리포트 합성 + 근거 기반 Q&A 비즈니스 로직 정의
//
// 처리 흐름:
//  1. reasoning 클라이언트가 없으면 결정적 fallback 리포트 생성
//  2. 있으면 signal line + 유사 사례로 strict JSON 요청 구성
//  3. 응답 필드를 방어적으로 정규화 (리스트 상한, confidence [0,1] 클램프)
//  4. 호출 실패/비정형 응답은 error variant fallback으로 강등
//
// 이 서비스는 절대 에러를 반환하지 않는다. 모든 실패 경로가
// 구조화된 degraded 출력으로 끝나는 것이 파이프라인 가용성 보장이다.

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/loglens/backend/internal/model"
)

const (
	maxPromptLines = 50
	maxPromptCases = 5

	summaryDisabled = "Auto-summary (LLM disabled): based on log evidence and related cases."
	summaryError    = "Analysis unavailable (synthesis error)."
	answerDisabled  = "LLM is disabled; cannot answer the question."
	answerFailed    = "Q&A failed (synthesis error)."

	synthesisSystemPrompt = "You are a senior SRE. Given high-signal log lines and similar past incidents, " +
		"produce a concise, actionable incident analysis. Return strict JSON with keys: " +
		`{"summary": string, "confidence": number, ` +
		`"timeline": [{"time": string,"message": string,"source": string}], ` +
		`"immediate_evidence": [string], ` +
		`"root_causes": [{"cause": string,"confidence": number}], ` +
		`"next_steps": [string], ` +
		`"references": [{"source": string,"snippet": string}] }`

	answerSystemPrompt = "You are an SRE assistant. Answer the user's question using ONLY the provided log lines " +
		"and the retrieved past cases. Be concise (<=4 sentences). If there's not enough evidence, " +
		"say so. Return strict JSON with keys: " +
		`{"answer": string, "confidence": number, "citations": [{"source": string,"snippet": string}]}. ` +
		"For citations, use the source names provided (e.g., 'app.log' or postmortem filenames) and short snippets."
)

// ReasoningClient - 외부 reasoning 서비스. 비정형 응답은 오류로 돌려준다.
type ReasoningClient interface {
	Enabled() bool
	Complete(ctx context.Context, system, user string) (json.RawMessage, error)
}

type SynthesisService struct {
	llm ReasoningClient
}

func NewSynthesisService(llm ReasoningClient) *SynthesisService {
	return &SynthesisService{llm: llm}
}

func (s *SynthesisService) enabled() bool {
	return s.llm != nil && s.llm.Enabled()
}

// Synthesize - 최종 인시던트 리포트 생성. RelatedCases는 호출자가
// 채운다 (합성 모드와 무관하게 검색 결과 원문이 들어가야 하므로).
func (s *SynthesisService) Synthesize(ctx context.Context, queryText string, signalLines, relatedCases []string) model.IncidentReport {
	if !s.enabled() {
		return disabledReport(signalLines)
	}

	user := buildEvidencePayload("LOG SIGNALS (top lines)", signalLines, relatedCases)
	raw, err := s.llm.Complete(ctx, synthesisSystemPrompt, user)
	if err != nil {
		log.Printf("[synthesize_error] %v", err)
		return errorReport(signalLines)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		log.Printf("[synthesize_error] unparseable response: %v", err)
		return errorReport(signalLines)
	}

	return model.IncidentReport{
		Summary:           stringField(fields, "summary", "Analysis unavailable."),
		Confidence:        clamp01(floatField(fields, "confidence", 0.75)),
		Timeline:          coerceTimeline(objectList(fields["timeline"])),
		ImmediateEvidence: capStrings(stringList(fields["immediate_evidence"]), model.MaxEvidenceLines),
		RootCauses:        coerceRootCauses(objectList(fields["root_causes"])),
		NextSteps:         capStrings(stringList(fields["next_steps"]), model.MaxNextSteps),
		References:        coerceReferences(objectList(fields["references"]), model.MaxReferences),
	}
}

// Answer - 제공된 증거만으로 질문에 답한다. 합성과 달리 LLM이 없으면
// degraded 리포트가 아니라 "답변 불가"를 돌려준다 (capability gate).
func (s *SynthesisService) Answer(ctx context.Context, question string, signalLines, relatedCases []string) model.Answer {
	if !s.enabled() {
		return model.Answer{Answer: answerDisabled, Confidence: 0.0, Citations: []model.Reference{}}
	}

	user := "QUESTION:\n" + question + "\n\n" +
		buildEvidencePayload("LOG LINES", signalLines, relatedCases)
	raw, err := s.llm.Complete(ctx, answerSystemPrompt, user)
	if err != nil {
		log.Printf("[qna_error] %v", err)
		return model.Answer{Answer: answerFailed, Confidence: 0.0, Citations: []model.Reference{}}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		log.Printf("[qna_error] unparseable response: %v", err)
		return model.Answer{Answer: answerFailed, Confidence: 0.0, Citations: []model.Reference{}}
	}

	return model.Answer{
		Answer:     stringField(fields, "answer", "No answer."),
		Confidence: clamp01(floatField(fields, "confidence", 0.6)),
		Citations:  coerceReferences(objectList(fields["citations"]), model.MaxReferences),
	}
}

// --- deterministic fallbacks ------------------------------------------------

func disabledReport(signalLines []string) model.IncidentReport {
	return model.IncidentReport{
		Summary:           summaryDisabled,
		Confidence:        0.5,
		Timeline:          fallbackTimeline(signalLines),
		ImmediateEvidence: capStrings(clipLines(signalLines, maxPromptLines), model.MaxEvidenceLines),
		RootCauses:        []model.RootCause{{Cause: "Likely issue inferred from logs", Confidence: 0.4}},
		NextSteps:         []string{"Review logs and related cases; LLM synthesizer is disabled."},
		References:        []model.Reference{},
	}
}

func errorReport(signalLines []string) model.IncidentReport {
	return model.IncidentReport{
		Summary:           summaryError,
		Confidence:        0.5,
		Timeline:          fallbackTimeline(signalLines),
		ImmediateEvidence: capStrings(clipLines(signalLines, maxPromptLines), model.MaxEvidenceLines),
		RootCauses:        []model.RootCause{{Cause: "Unknown (synthesis error)", Confidence: 0.3}},
		NextSteps:         []string{"Retry synthesis later; check logs and related cases."},
		References:        []model.Reference{},
	}
}

func fallbackTimeline(signalLines []string) []model.TimelineEvent {
	lines := clipLines(signalLines, maxPromptLines)
	timeline := make([]model.TimelineEvent, 0, len(lines))
	for _, line := range lines {
		timeline = append(timeline, model.TimelineEvent{Time: "-", Message: line, Source: "analysis"})
	}
	if len(timeline) > model.MaxTimelineEntries {
		timeline = timeline[:model.MaxTimelineEntries]
	}
	return timeline
}

// --- prompt assembly --------------------------------------------------------

func buildEvidencePayload(linesHeading string, signalLines, relatedCases []string) string {
	var sb strings.Builder
	sb.WriteString(linesHeading + ":\n")
	sb.WriteString(strings.Join(clipLines(signalLines, maxPromptLines), "\n"))
	sb.WriteString("\n\nRETRIEVED RELATED CASES:\n")
	cases := relatedCases
	if len(cases) > maxPromptCases {
		cases = cases[:maxPromptCases]
	}
	for _, rc := range cases {
		sb.WriteString("- " + rc + "\n")
	}
	sb.WriteString("\nReturn ONLY the JSON object.")
	return sb.String()
}

// clipLines - 비어있지 않은 앞쪽 n줄만 유지 (토큰 비용 제한)
func clipLines(lines []string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
		if len(out) >= n {
			break
		}
	}
	return out
}

// --- defensive coercion -----------------------------------------------------

func stringField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return fallback
	}
	return s
}

func floatField(fields map[string]json.RawMessage, key string, fallback float64) float64 {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return fallback
	}
	return f
}

// objectList - JSON 배열을 느슨하게 해석. 배열이 아니면 빈 목록.
func objectList(raw json.RawMessage) []map[string]any {
	if raw == nil {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func stringList(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceTimeline(items []map[string]any) []model.TimelineEvent {
	out := make([]model.TimelineEvent, 0, len(items))
	for _, item := range items {
		msg := asString(item["message"])
		if msg == "" {
			continue
		}
		entry := model.TimelineEvent{
			Time:    asString(item["time"]),
			Message: msg,
			Source:  asString(item["source"]),
		}
		if entry.Time == "" {
			entry.Time = "-"
		}
		if entry.Source == "" {
			entry.Source = "analysis"
		}
		out = append(out, entry)
		if len(out) >= model.MaxTimelineEntries {
			break
		}
	}
	return out
}

func coerceRootCauses(items []map[string]any) []model.RootCause {
	out := make([]model.RootCause, 0, len(items))
	for _, item := range items {
		cause := asString(item["cause"])
		if cause == "" {
			continue
		}
		out = append(out, model.RootCause{
			Cause:      cause,
			Confidence: clamp01(asFloat(item["confidence"], 0.7)),
		})
		if len(out) >= model.MaxRootCauses {
			break
		}
	}
	return out
}

func coerceReferences(items []map[string]any, limit int) []model.Reference {
	out := make([]model.Reference, 0, len(items))
	for _, item := range items {
		snippet := asString(item["snippet"])
		if snippet == "" {
			continue
		}
		source := asString(item["source"])
		if source == "" {
			source = "retrieved_case"
		}
		out = append(out, model.Reference{Source: source, Snippet: snippet})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func capStrings(items []string, limit int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asFloat(v any, fallback float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
