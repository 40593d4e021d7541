package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rushteam/upsell/core"
)

// DefaultModel 默认模型。
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig 是 OpenAI 兼容服务的连接配置。
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // 为空时使用官方地址
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration // 单次 HTTP 请求超时，0 表示不限制
}

// OpenAIClient 基于 go-openai 的 Completer 实现。
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient 创建客户端。
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Model 返回使用的模型名。
func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	o := Apply(opts...)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if o.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "chat completion failed", ErrEmptyCompletion)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
