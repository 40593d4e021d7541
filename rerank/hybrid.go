package rerank

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/pkg/utils"
)

// 策略名，写入 strategy label。
const (
	StrategyLLMAll    = "llm_all"
	StrategyLLMWindow = "llm_window"
	StrategyRule      = "rule"
)

// 默认规模阈值与超时。
const (
	DefaultDirectMax  = 5
	DefaultWindowMax  = 15
	DefaultWindowSize = 10
	DefaultTimeout    = 8 * time.Second
)

// HybridNode 按过滤后的候选数量选择重排策略，输入必须已按规则分数降序：
//   - count <= DirectMax：全部交给 LLM 重排
//   - count <= WindowMax：取规则前 WindowSize 个交给 LLM 重排
//   - 其余或未开启 LLM：规则前 K 个
//
// LLM 调用带超时；超时、解析失败、序号越界等任何错误都同步降级为规则前 K 个，不向调用方返回错误。
type HybridNode struct {
	Reranker   Reranker
	DirectMax  int
	WindowMax  int
	WindowSize int
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewHybridNode 返回使用默认阈值的 HybridNode。
func NewHybridNode(r Reranker, logger zerolog.Logger) *HybridNode {
	return &HybridNode{
		Reranker:   r,
		DirectMax:  DefaultDirectMax,
		WindowMax:  DefaultWindowMax,
		WindowSize: DefaultWindowSize,
		Timeout:    DefaultTimeout,
		Logger:     logger,
	}
}

func (n *HybridNode) Name() string        { return "rerank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindReRank }

// Strategy 返回给定候选数量下使用的策略。
func (n *HybridNode) Strategy(count int, useLLM bool) string {
	if !useLLM || n.Reranker == nil {
		return StrategyRule
	}
	switch {
	case count <= orDefault(n.DirectMax, DefaultDirectMax):
		return StrategyLLMAll
	case count <= orDefault(n.WindowMax, DefaultWindowMax):
		return StrategyLLMWindow
	default:
		return StrategyRule
	}
}

func (n *HybridNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}
	k := rctx.TopK()
	strategy := n.Strategy(len(items), rctx.UseLLM)
	rctx.PutLabel(utils.LabelStrategy, utils.Label{Value: strategy, Source: "rerank"})

	if strategy == StrategyRule {
		return mark(head(items, k), "rule"), nil
	}

	window := items
	if strategy == StrategyLLMWindow {
		window = items[:min(orDefault(n.WindowSize, DefaultWindowSize), len(items))]
	}

	timeout := orDefault(n.Timeout, DefaultTimeout)
	cctx, cancel := context.WithTimeout(ctx, timeout)
	indices, err := n.Reranker.Rerank(cctx, Request{
		Candidates:     window,
		Profile:        rctx.Profile,
		ReferencePrice: rctx.ReferencePrice,
		K:              k,
	})
	cancel()

	out, reason := ApplyOrder(items, len(window), indices, k, err)
	if reason != nil {
		n.Logger.Warn().Err(reason).
			Str("session", rctx.SessionID).
			Str("strategy", strategy).
			Int("candidates", len(window)).
			Msg("llm rerank failed, falling back to rule ranking")
		rctx.PutLabel(utils.LabelFallback, utils.Label{Value: reason.Error(), Source: "rerank"})
		return mark(out, "rule"), nil
	}
	return mark(out, "llm"), nil
}

func head(items []*core.Item, k int) []*core.Item {
	return append([]*core.Item(nil), items[:min(k, len(items))]...)
}

func mark(items []*core.Item, source string) []*core.Item {
	for _, it := range items {
		if it != nil {
			it.PutLabel(utils.LabelRerank, utils.Label{Value: source, Source: "rerank"})
		}
	}
	return items
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}
