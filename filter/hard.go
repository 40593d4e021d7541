package filter

import (
	"context"

	"github.com/rushteam/upsell/core"
)

// HardFilters 返回默认的三条硬约束。
func HardFilters() []Filter {
	return []Filter{
		&PassengerFilter{},
		&BudgetFilter{Ratio: DefaultBudgetRatio},
		&LuggageFilter{MinBags: DefaultMinBags},
	}
}

const (
	// DefaultBudgetRatio 总价超过 budget_total 的该倍数时剔除
	DefaultBudgetRatio = 1.5
	// DefaultMinBags 行李多时要求的最少 bag 数
	DefaultMinBags = 3
)

func profileOf(rctx *core.RecommendContext) *core.Profile {
	if rctx == nil {
		return nil
	}
	return rctx.Profile
}

// PassengerFilter 剔除座位数不足以容纳乘客的 deal。
type PassengerFilter struct{}

func (f *PassengerFilter) Name() string { return "filter.passengers" }

func (f *PassengerFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	p := profileOf(rctx)
	if p == nil || p.Passengers <= 0 || item.Deal == nil {
		return false, nil
	}
	return item.Deal.Vehicle.PassengersCount < p.Passengers, nil
}

// BudgetFilter 剔除总价超过 Ratio * budget_total 的 deal。
type BudgetFilter struct {
	Ratio float64
}

func (f *BudgetFilter) Name() string { return "filter.budget" }

func (f *BudgetFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	p := profileOf(rctx)
	if p == nil || p.BudgetTotal <= 0 || item.Deal == nil {
		return false, nil
	}
	ratio := f.Ratio
	if ratio <= 0 {
		ratio = DefaultBudgetRatio
	}
	return item.Deal.Total() > ratio*p.BudgetTotal, nil
}

// LuggageFilter 在行李多时剔除 bag 数不足的 deal。
type LuggageFilter struct {
	MinBags int
}

func (f *LuggageFilter) Name() string { return "filter.luggage" }

func (f *LuggageFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	p := profileOf(rctx)
	if p == nil || p.Luggage != core.LuggageMany || item.Deal == nil {
		return false, nil
	}
	minBags := f.MinBags
	if minBags <= 0 {
		minBags = DefaultMinBags
	}
	return item.Deal.Vehicle.BagsCount < minBags, nil
}
