// 업로드된 로그 파일을 정규화 이벤트와 검색 쿼리로 변환하는 triage 파서
//
// 처리 흐름:
//  1. 파일당 최대 200줄까지 읽기 (.log/.txt/.json만, 읽기 실패는 건너뜀)
//  2. 줄 단위 파싱: JSON 레코드 우선, 실패 시 정규식 기반 추출
//  3. ERROR/WARN 메시지를 signal line으로 수집 (파일명 prefix, 중복 제거)
//  4. 전체 줄 앞부분으로 검색 쿼리 텍스트 구성

package triage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/loglens/backend/internal/model"
)

const (
	maxLinesPerFile = 200
	maxQueryLines   = 50

	// PlaceholderQuery - 추출된 줄이 하나도 없을 때 검색에 사용하는 고정 쿼리.
	// 빈 쿼리로 벡터 검색을 호출하지 않기 위한 안전장치.
	PlaceholderQuery = "Database pool timeout after 30s; in_use=50; waiters=12"

	hintPoolTimeout = "Database pool exhaustion/timeout observed; multiple services impacted."
	hintException   = "Exceptions detected; see top error lines."
)

var (
	tsPatterns = []*regexp.Regexp{
		// 2025-01-05 14:30:15 또는 2025-01-05T14:30:15.842
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:[.,]\d{3})?`),
		// 14:30:15
		regexp.MustCompile(`\d{2}:\d{2}:\d{2}`),
	}

	levelKeywords = []string{model.LevelError, model.LevelWarn, "WARNING", model.LevelInfo, model.LevelDebug, model.LevelTrace}
	levelPatterns = compileLevelPatterns()
	levelStripRe  = regexp.MustCompile(`(?i)\b(?:ERROR|WARN|WARNING|INFO|DEBUG|TRACE)\b`)

	tsKeys    = []string{"ts", "time", "@timestamp", "timestamp"}
	levelKeys = []string{"level", "severity", "lvl"}
	msgKeys   = []string{"message", "msg", "log"}

	knownLevels = map[string]bool{
		model.LevelError: true,
		model.LevelWarn:  true,
		model.LevelInfo:  true,
		model.LevelDebug: true,
		model.LevelTrace: true,
	}
)

func compileLevelPatterns() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(levelKeywords))
	for _, kw := range levelKeywords {
		out[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return out
}

// LineParser - 한 줄을 (time, level, message)로 해석하는 전략.
// 포맷별 구현을 교체할 수 있도록 인터페이스로 분리.
type LineParser interface {
	ParseLine(line string) (ts, level, msg string)
}

// HeuristicLineParser - JSON 레코드 우선, 정규식 fallback의 기본 구현
type HeuristicLineParser struct{}

func (HeuristicLineParser) ParseLine(line string) (string, string, string) {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			ts := firstValue(obj, tsKeys)
			level := normalizeLevel(firstValue(obj, levelKeys))
			msg := firstValue(obj, msgKeys)
			if msg == "" {
				msg = s
			}
			return ts, level, strings.TrimSpace(msg)
		}
		// JSON처럼 보여도 깨진 줄이면 정규식 경로로
	}

	ts := ""
	for _, pat := range tsPatterns {
		if m := pat.FindString(line); m != "" {
			ts = m
			break
		}
	}

	level := model.LevelInfo
	for _, kw := range levelKeywords {
		if levelPatterns[kw].MatchString(line) {
			level = normalizeLevel(kw)
			break
		}
	}

	msg := line
	if ts != "" {
		msg = strings.ReplaceAll(msg, ts, "")
	}
	msg = levelStripRe.ReplaceAllString(msg, "")
	msg = strings.Trim(msg, " -:\t")
	return ts, level, msg
}

// firstValue - 우선순위 키 목록에서 첫 번째 비어있지 않은 값을 문자열로 반환
func firstValue(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func normalizeLevel(level string) string {
	upper := strings.ToUpper(strings.TrimSpace(level))
	if upper == "WARNING" {
		upper = model.LevelWarn
	}
	if !knownLevels[upper] {
		return model.LevelInfo
	}
	return upper
}

// File - 파싱 대상 원본 (파일명 + 줄 목록)
type File struct {
	Name  string
	Lines []string
}

// Parser - triage 파서. LineParser 전략을 주입받는다.
type Parser struct {
	line LineParser
}

func NewParser() *Parser {
	return &Parser{line: HeuristicLineParser{}}
}

func NewParserWith(line LineParser) *Parser {
	return &Parser{line: line}
}

// Parse - 원본 줄 목록을 TriageResult로 변환.
// 이벤트 순서는 파일 순서 → 파일 내 줄 순서를 따른다.
func (p *Parser) Parse(files []File) *model.TriageResult {
	result := &model.TriageResult{
		Events:      []model.LogEvent{},
		SignalLines: []string{},
		LevelCounts: map[string]int{},
	}

	var allLines []string
	seen := make(map[string]bool)

	for _, file := range files {
		lines := file.Lines
		if len(lines) > maxLinesPerFile {
			lines = lines[:maxLinesPerFile]
		}
		for _, raw := range lines {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			ts, level, msg := p.line.ParseLine(raw)
			result.Events = append(result.Events, model.LogEvent{
				Time:    ts,
				Level:   level,
				Message: msg,
				Source:  file.Name,
			})
			result.LevelCounts[level]++
			allLines = append(allLines, trimmed)

			if level == model.LevelError || level == model.LevelWarn {
				signal := file.Name + ": " + msg
				if !seen[signal] {
					seen[signal] = true
					result.SignalLines = append(result.SignalLines, signal)
				}
			}
		}
	}

	queryLines := allLines
	if len(queryLines) > maxQueryLines {
		queryLines = queryLines[:maxQueryLines]
	}
	result.QueryText = strings.Join(queryLines, " ")
	if result.QueryText == "" {
		result.QueryText = PlaceholderQuery
	}

	result.Hint = detectHint(allLines)
	return result
}

// ParseDir - 디렉터리 내 로그 파일들을 읽어 Parse 호출.
// 읽을 수 없는 파일은 로그만 남기고 건너뛴다 (치명적이지 않음).
func (p *Parser) ParseDir(dir string) *model.TriageResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[triage] cannot list %s: %v", dir, err)
		return p.Parse(nil)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !isLogFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		lines, err := readLines(path, maxLinesPerFile)
		if err != nil {
			log.Printf("[triage] skipping unreadable file %s: %v", path, err)
			continue
		}
		files = append(files, File{Name: entry.Name(), Lines: lines})
	}
	return p.Parse(files)
}

func isLogFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".log") ||
		strings.HasSuffix(lower, ".txt") ||
		strings.HasSuffix(lower, ".json")
}

func readLines(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() && len(lines) < limit {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// detectHint - 코퍼스 전체에서 간단한 키워드 조합으로 카테고리 힌트 추출.
// 이후 단계가 소비하지는 않고 관측용으로만 남긴다.
func detectHint(allLines []string) string {
	low := strings.ToLower(strings.Join(allLines, " "))
	switch {
	case strings.Contains(low, "pool") && strings.Contains(low, "timeout"):
		return hintPoolTimeout
	case strings.Contains(low, "exception"):
		return hintException
	}
	return ""
}
