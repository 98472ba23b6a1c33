// 외부 reasoning 서비스(Gemini)와 통신하는 클라이언트 정의
//
// 항상 strict JSON 출력을 요청하며, 호출 실패와 비정형 응답은
// 호출자 쪽에서 동일하게 degraded 경로로 처리한다.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/loglens/backend/internal/config"
	"google.golang.org/genai"
)

type ReasoningClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewReasoningClient(cfg config.AIConfig) (*ReasoningClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second // AI 분석 시간 고려
	}
	return &ReasoningClient{client: client, model: cfg.ChatModel, timeout: timeout}, nil
}

func (c *ReasoningClient) Enabled() bool {
	return c != nil && c.client != nil
}

// Complete - system 지시문과 user payload로 JSON 응답을 생성.
// 응답이 JSON 객체가 아니면 오류로 취급한다.
func (c *ReasoningClient) Complete(ctx context.Context, system, user string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, err
	}
	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("empty completion result")
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("completion is not valid JSON")
	}
	return json.RawMessage(text), nil
}
