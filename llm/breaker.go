package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/rushteam/upsell/core"
)

// BreakerSettings 熔断参数，零值字段使用默认值。
type BreakerSettings struct {
	Name                string
	MaxRequests         uint32        // half-open 状态允许的探测请求数
	Interval            time.Duration // closed 状态计数清零周期
	Timeout             time.Duration // open 状态持续时间
	ConsecutiveFailures uint32        // 连续失败多少次后熔断
}

// DefaultBreakerSettings 返回默认熔断参数。
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                "llm",
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Breaker 用熔断器包装 Completer：模型持续不可用时快速失败，重排立即走规则降级。
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker 创建熔断包装。
func NewBreaker(next Completer, s BreakerSettings, logger zerolog.Logger) *Breaker {
	def := DefaultBreakerSettings()
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = def.MaxRequests
	}
	if s.Timeout <= 0 {
		s.Timeout = def.Timeout
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = def.ConsecutiveFailures
	}
	threshold := s.ConsecutiveFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 调用方取消不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return &Breaker{next: next, cb: cb}
}

// State 返回当前熔断状态。
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func (b *Breaker) Complete(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, messages, opts...)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", core.WrapDomainError(core.ModuleLLM, core.ErrorCodeUnavailable, "circuit open", err)
		}
		return "", err
	}
	return out.(string), nil
}
