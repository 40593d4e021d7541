package rank

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/pkg/utils"
)

// RuleNode 是规则打分排序 Node。
// - 写入 labels：rank_model、match（命中的规则）
// - 更新 item.Score 并按分数降序稳定排序（同分保持输入顺序）
type RuleNode struct {
	Policy Policy

	// Bonus 仅在 rctx.Registered 非空时叠加
	Bonus RegisteredBonus
}

// NewRuleNode 返回使用默认策略的 RuleNode。
func NewRuleNode() *RuleNode {
	return &RuleNode{Policy: DefaultPolicy(), Bonus: DefaultRegisteredBonus()}
}

func (n *RuleNode) Name() string        { return "rank.rule" }
func (n *RuleNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *RuleNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	var (
		profile *core.Profile
		reg     *core.RegisteredProfile
		ref     float64
	)
	if rctx != nil {
		profile, reg, ref = rctx.Profile, rctx.Registered, rctx.ReferencePrice
	}
	model := "rule"
	if reg != nil {
		model = "rule+registered"
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		score, hits := n.Policy.Explain(it.Deal, profile, ref)
		score += n.Bonus.Score(it.Deal, reg)
		it.Score = score
		it.PutLabel(utils.LabelRankModel, utils.Label{Value: model, Source: "rank"})
		if len(hits) > 0 {
			it.PutLabel(utils.LabelMatch, utils.Label{Value: strings.Join(hits, ","), Source: "rank"})
		}
	}

	SortByScore(items)
	return items, nil
}

// SortByScore 按分数降序稳定排序，nil 排在最后。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
