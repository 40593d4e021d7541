// Package ranker 是混合排序的门面：filter -> rank.rule -> rerank.hybrid。
package ranker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/filter"
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/pkg/utils"
	"github.com/rushteam/upsell/rank"
	"github.com/rushteam/upsell/rerank"
)

// RankRequest 是一次排序请求。
type RankRequest struct {
	SessionID      string
	Deals          []core.Deal
	Profile        *core.Profile
	Registered     *core.RegisteredProfile
	ReferencePrice float64
	K              int
	UseLLM         bool
}

func (r RankRequest) context() *core.RecommendContext {
	profile := r.Profile
	if profile == nil {
		profile = core.NewProfile(r.ReferencePrice)
	}
	return &core.RecommendContext{
		SessionID:      r.SessionID,
		Profile:        profile,
		Registered:     r.Registered,
		ReferencePrice: r.ReferencePrice,
		K:              r.K,
		UseLLM:         r.UseLLM,
	}
}

// Hybrid 组合过滤、规则打分与可选 LLM 重排。
type Hybrid struct {
	pipeline *pipeline.Pipeline
	logger   zerolog.Logger
}

type options struct {
	logger     zerolog.Logger
	filters    []filter.Filter
	policy     rank.Policy
	bonus      rank.RegisteredBonus
	directMax  int
	windowMax  int
	windowSize int
	timeout    time.Duration
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithFilters 在三条硬约束之后追加过滤器。
func WithFilters(fs ...filter.Filter) Option {
	return func(o *options) { o.filters = append(o.filters, fs...) }
}

func WithPolicy(p rank.Policy) Option { return func(o *options) { o.policy = p } }

// WithThresholds 设置策略阈值：直接重排上限、窗口重排上限、窗口大小。
func WithThresholds(directMax, windowMax, windowSize int) Option {
	return func(o *options) {
		o.directMax, o.windowMax, o.windowSize = directMax, windowMax, windowSize
	}
}

// WithRerankTimeout 设置 LLM 重排超时。
func WithRerankTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// New 用默认链路构建 Hybrid；r 为空时只做规则排序。
func New(r rerank.Reranker, opts ...Option) *Hybrid {
	o := options{
		logger:     zerolog.Nop(),
		policy:     rank.DefaultPolicy(),
		bonus:      rank.DefaultRegisteredBonus(),
		directMax:  rerank.DefaultDirectMax,
		windowMax:  rerank.DefaultWindowMax,
		windowSize: rerank.DefaultWindowSize,
		timeout:    rerank.DefaultTimeout,
	}
	for _, fn := range opts {
		fn(&o)
	}

	hybrid := rerank.NewHybridNode(r, o.logger)
	hybrid.DirectMax, hybrid.WindowMax, hybrid.WindowSize, hybrid.Timeout = o.directMax, o.windowMax, o.windowSize, o.timeout

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&filter.FilterNode{Filters: append(filter.HardFilters(), o.filters...), Logger: o.logger},
			&rank.RuleNode{Policy: o.policy, Bonus: o.bonus},
			hybrid,
		},
		Logger: o.logger,
	}
	return &Hybrid{pipeline: p, logger: o.logger}
}

// NewFromPipeline 用外部构建（例如 YAML 配置）的 Pipeline 创建 Hybrid。
func NewFromPipeline(p *pipeline.Pipeline, logger zerolog.Logger) *Hybrid {
	p.Logger = logger
	return &Hybrid{pipeline: p, logger: logger}
}

// Rank 返回最多 K 个排序后的 deal。LLM 失败不会返回错误。
func (h *Hybrid) Rank(ctx context.Context, req RankRequest) ([]*core.Item, error) {
	if len(req.Deals) == 0 {
		return nil, nil
	}
	rctx := req.context()
	out, err := h.pipeline.Run(ctx, rctx, core.ItemsFromDeals(req.Deals))
	if err != nil {
		return nil, err
	}
	out = truncate(out, rctx.TopK())

	if lbl, ok := rctx.GetLabel(utils.LabelStrategy); ok {
		h.logger.Debug().Str("session", req.SessionID).Str("strategy", lbl.Value).Int("deals", len(req.Deals)).Int("returned", len(out)).Msg("ranked deals")
	}
	return out, nil
}

// RankDeterministic 与 Rank 相同的链路，但不调用 LLM。
func (h *Hybrid) RankDeterministic(ctx context.Context, req RankRequest) ([]*core.Item, error) {
	req.UseLLM = false
	return h.Rank(ctx, req)
}

// Deterministic 是无需构建 Hybrid 的纯规则排序：默认硬约束、默认打分、前 K 个。
func Deterministic(req RankRequest) []*core.Item {
	out, _ := New(nil).RankDeterministic(context.Background(), req)
	return out
}

func truncate(items []*core.Item, k int) []*core.Item {
	if len(items) > k {
		return items[:k]
	}
	return items
}
