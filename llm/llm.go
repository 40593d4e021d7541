// Package llm 定义角色消息补全能力，并提供 OpenAI 兼容实现与熔断包装。
package llm

import (
	"context"
	"errors"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyCompletion 模型没有返回任何候选。
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Message 是带角色的一条消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System / User / Assistant 是构造消息的便捷函数。
func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Options 是单次补全的参数。零值表示使用客户端默认值。
type Options struct {
	Temperature *float32
	MaxTokens   int
	JSON        bool // 要求模型返回 JSON 对象
}

type Option func(*Options)

func WithTemperature(t float32) Option {
	return func(o *Options) { o.Temperature = &t }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// WithJSON 要求模型以 JSON 对象格式回复。
func WithJSON() Option {
	return func(o *Options) { o.JSON = true }
}

// Apply 合并 opts。
func Apply(opts ...Option) Options {
	var o Options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Completer 给定角色消息列表返回文本补全，用于自由对话和按序号重排。
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

// CompleterFunc 把函数适配为 Completer。
type CompleterFunc func(ctx context.Context, messages []Message, opts ...Option) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	return f(ctx, messages, opts...)
}
