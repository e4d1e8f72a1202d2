package service

import (
	"bytes"
	"codepath_backend/internal/config"
	"codepath_backend/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tutorPrompt = "You are a friendly programming tutor helping a student who is learning Python, JavaScript, HTML/CSS, SQL or Git. " +
	"Answer clearly and concisely. Use simple language and short code examples when helpful. " +
	"If the student mentions a specific topic, focus your answer on that. Keep responses focused and educational."

// HelpService 学习助手，调用 OpenAI 兼容的 chat/completions 接口
type HelpService struct {
	config config.AIConfig
	client *http.Client
}

func NewHelpService(cfg config.AIConfig) *HelpService {
	return &HelpService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type HelpRequest struct {
	Question string `json:"question" binding:"required,max=4000"`
	Context  string `json:"context"` // 当前主题
}

type HelpAnswer struct {
	Answer string `json:"answer"`
}

// Ask 向模型提问，context 非空时作为当前主题提示
func (s *HelpService) Ask(ctx context.Context, req HelpRequest) (*HelpAnswer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", util.ErrInvalidInput)
	}
	if s.config.BaseURL == "" {
		return nil, util.ErrAIUnavailable
	}

	userMessage := question
	if topic := strings.TrimSpace(req.Context); topic != "" {
		userMessage = fmt.Sprintf("[Current topic: %s]\n\n%s", topic, question)
	}

	jsonData, err := json.Marshal(chatCompletionRequest{
		Model: s.config.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: tutorPrompt},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.config.BaseURL, "/")+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", util.MimeJSON)
	if s.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrAIUnavailable, resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrAIUnavailable, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", util.ErrAIUnavailable)
	}
	return &HelpAnswer{Answer: result.Choices[0].Message.Content}, nil
}
