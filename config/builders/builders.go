package builders

import (
	"fmt"

	"github.com/rushteam/upsell/config"
	"github.com/rushteam/upsell/filter"
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/pkg/conv"
	"github.com/rushteam/upsell/rank"
	"github.com/rushteam/upsell/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("filter.hard", BuildHardFilterNode)
	config.Register("rank.rule", BuildRuleNode)
	config.Register("rerank.hybrid", BuildHybridNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildHardFilterNode 构建只含默认硬约束的过滤节点，可覆盖 budget_ratio / min_bags。
func BuildHardFilterNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	return &filter.FilterNode{Filters: hardFilters(cfg), Logger: deps.Logger}, nil
}

func hardFilters(cfg map[string]any) []filter.Filter {
	return []filter.Filter{
		&filter.PassengerFilter{},
		&filter.BudgetFilter{Ratio: conv.ConfigGetFloat(cfg, "budget_ratio", filter.DefaultBudgetRatio)},
		&filter.LuggageFilter{MinBags: conv.ConfigGetInt(cfg, "min_bags", filter.DefaultMinBags)},
	}
}

// BuildFilterNode 按 filters 列表组合过滤器：hard / passengers / budget / luggage / expr / blocklist。
func BuildFilterNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "hard":
			filters = append(filters, hardFilters(filterMap)...)
		case "passengers":
			filters = append(filters, &filter.PassengerFilter{})
		case "budget":
			filters = append(filters, &filter.BudgetFilter{Ratio: conv.ConfigGetFloat(filterMap, "ratio", filter.DefaultBudgetRatio)})
		case "luggage":
			filters = append(filters, &filter.LuggageFilter{MinBags: conv.ConfigGetInt(filterMap, "min_bags", filter.DefaultMinBags)})
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, f)
		case "blocklist":
			ids := conv.SliceAnyToString(filterMap["vehicle_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			if key != "" && deps.Store == nil {
				return nil, fmt.Errorf("blocklist filter with key %q requires a store", key)
			}
			filters = append(filters, filter.NewBlocklistFilter(ids, deps.Store, key))
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters, Logger: deps.Logger}, nil
}

// BuildRuleNode 构建规则打分节点，可覆盖 uplift_divisor / uplift_cap / family_seats / luggage_bags。
func BuildRuleNode(cfg map[string]any, _ config.Deps) (pipeline.Node, error) {
	n := rank.NewRuleNode()
	p := &n.Policy
	p.UpliftDivisor = conv.ConfigGetFloat(cfg, "uplift_divisor", p.UpliftDivisor)
	p.UpliftCap = conv.ConfigGetFloat(cfg, "uplift_cap", p.UpliftCap)
	p.FamilySeats = conv.ConfigGetInt(cfg, "family_seats", p.FamilySeats)
	p.LuggageBags = conv.ConfigGetInt(cfg, "luggage_bags", p.LuggageBags)
	if p.UpliftDivisor <= 0 {
		return nil, fmt.Errorf("uplift_divisor must be > 0")
	}
	if !conv.ConfigGet(cfg, "registered_bonus", true) {
		n.Bonus = rank.RegisteredBonus{}
	}
	return n, nil
}

// BuildHybridNode 构建混合重排节点；deps.Reranker 为空时只做规则截断。
func BuildHybridNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	n := rerank.NewHybridNode(deps.Reranker, deps.Logger)
	n.DirectMax = conv.ConfigGetInt(cfg, "direct_max", n.DirectMax)
	n.WindowMax = conv.ConfigGetInt(cfg, "window_max", n.WindowMax)
	n.WindowSize = conv.ConfigGetInt(cfg, "window_size", n.WindowSize)
	n.Timeout = conv.ConfigGetDuration(cfg, "timeout", n.Timeout)
	if n.DirectMax > n.WindowMax {
		return nil, fmt.Errorf("direct_max (%d) must not exceed window_max (%d)", n.DirectMax, n.WindowMax)
	}
	return n, nil
}

func BuildTopNNode(cfg map[string]any, _ config.Deps) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
