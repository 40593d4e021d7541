// Package assistant 串起一轮对话：画像更新、目录读取、排序、保障/附加项推荐与回复生成。
package assistant

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/extract"
	"github.com/rushteam/upsell/llm"
	"github.com/rushteam/upsell/profile"
	"github.com/rushteam/upsell/ranker"
	"github.com/rushteam/upsell/recommend"
)

// DefaultChatTemperature 自由对话使用的温度。
const DefaultChatTemperature float32 = 0.4

// Engine 是对外的推荐引擎。同一 session 的请求由调用方串行化。
type Engine struct {
	profiles *profile.Store
	catalog  core.Catalog
	ranker   *ranker.Hybrid
	chat     llm.Completer
	logger   zerolog.Logger

	k               int
	useLLM          bool
	chatTemperature float32
}

type Option func(*Engine)

// WithChat 设置对话与结构化分析使用的模型；为空时回复走确定性摘要。
func WithChat(c llm.Completer) Option { return func(e *Engine) { e.chat = c } }

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithK 设置每轮返回的车辆数量。
func WithK(k int) Option { return func(e *Engine) { e.k = k } }

// WithLLMRanking 是否允许 LLM 重排车辆。
func WithLLMRanking(on bool) Option { return func(e *Engine) { e.useLLM = on } }

func WithChatTemperature(t float32) Option { return func(e *Engine) { e.chatTemperature = t } }

// New 创建引擎。
func New(profiles *profile.Store, catalog core.Catalog, hybrid *ranker.Hybrid, opts ...Option) *Engine {
	e := &Engine{
		profiles:        profiles,
		catalog:         catalog,
		ranker:          hybrid,
		logger:          zerolog.Nop(),
		k:               core.DefaultK,
		chatTemperature: DefaultChatTemperature,
	}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

// UpdateRequest 是 UpdateAndRank 的输入。
type UpdateRequest struct {
	SessionID      string
	ReferencePrice float64
	Utterance      string
	Deals          []core.Deal // 本轮目录快照
	Registered     *core.RegisteredProfile
	K              int
	UseLLM         bool
}

// RankResult 是一次画像更新 + 排序的结果。
type RankResult struct {
	Items   []*core.Item
	Cards   []recommend.Card
	Profile *core.Profile
}

// UpdateAndRank 用本轮语句更新 session 画像并保存，然后对 deals 排序。
// ReferencePrice <= 0 时从 deals 推断。
func (e *Engine) UpdateAndRank(ctx context.Context, req UpdateRequest) (*RankResult, error) {
	ref := req.ReferencePrice
	if ref <= 0 {
		ref = core.ReferencePrice(req.Deals)
	}

	p, err := e.profiles.Load(ctx, req.SessionID, ref)
	if err != nil {
		return nil, err
	}
	p = extract.Apply(profile.Seed(p, req.Registered), req.Utterance)
	if err := e.profiles.Save(ctx, req.SessionID, p); err != nil {
		return nil, err
	}
	e.logProfile(req.SessionID, p)

	items, err := e.ranker.Rank(ctx, ranker.RankRequest{
		SessionID:      req.SessionID,
		Deals:          req.Deals,
		Profile:        p,
		Registered:     req.Registered,
		ReferencePrice: p.ReferencePrice,
		K:              req.K,
		UseLLM:         req.UseLLM,
	})
	if err != nil {
		return nil, err
	}
	return &RankResult{Items: items, Cards: recommend.Cards(items, p.ReferencePrice), Profile: p}, nil
}

// RecommendProtections 返回最多 3 条保障推荐。
func (e *Engine) RecommendProtections(pkgs []core.ProtectionPackage, st recommend.State, needs []string) []recommend.Recommendation {
	return recommend.Protections(pkgs, st, needs)
}

// RecommendAddons 返回最多 5 条附加项推荐。
func (e *Engine) RecommendAddons(groups []core.AddonGroup, st recommend.State, needs []string) []recommend.Recommendation {
	return recommend.Addons(groups, st, needs)
}

func (e *Engine) logProfile(session string, p *core.Profile) {
	e.logger.Debug().
		Str("session", session).
		Int("passengers", p.Passengers).
		Str("luggage", string(p.Luggage)).
		Float64("budget_total", p.BudgetTotal).
		Str("trip_type", string(p.TripType)).
		Str("comfort", string(p.ComfortPriority)).
		Str("risk", string(p.RiskAversion)).
		Str("upgrade", string(p.UpgradeOpenness)).
		Bool("kids", p.Kids).
		Bool("winter", p.WinterDriving).
		Float64("reference_price", p.ReferencePrice).
		Msg("profile updated")
}

// Reset 删除 session 画像，下一轮重新创建。
func (e *Engine) Reset(ctx context.Context, session string) error {
	return e.profiles.Evict(ctx, session)
}
