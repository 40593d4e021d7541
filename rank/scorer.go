// Package rank 实现确定性的规则打分（DealScorer）与排序 Node。
package rank

import (
	"math"
	"slices"
	"strings"

	"github.com/rushteam/upsell/core"
)

// Policy 是可调的加法打分策略，每条规则贡献一个固定或计算得到的增量（可为负）。
// 规则之间没有顺序依赖。
type Policy struct {
	Capacity       float64 // 座位数满足乘客数
	Luggage        float64 // 行李多且 bags >= LuggageBags
	LuggageBags    int
	Comfort        float64 // 高舒适需求且豪华/premium
	Family         float64 // 家庭出行且 SUV/MINIVAN 或 >= FamilySeats 座
	FamilySeats    int
	Business       float64 // 商务出行且 SEDAN 或豪华
	Party          float64 // 聚会出行且 SUV/COUPE 或豪华
	Recommended    float64
	NewCar         float64
	Luxury         float64 // 豪华车额外加分，与 Comfort 独立
	UpliftDivisor  float64 // uplift > 0：min(uplift/UpliftDivisor, UpliftCap)
	UpliftCap      float64
	SamePrice      float64 // uplift == 0
	PenaltyDivisor float64 // uplift < 0：max(uplift/PenaltyDivisor, PenaltyFloor)
	PenaltyFloor   float64
	Tiers          []Tier // 按 Ratio 降序，命中第一个即停止
}

// Tier 是价格档位加分：total > ref * Ratio 时加 Bonus。
type Tier struct {
	Ratio float64
	Bonus float64
}

// DefaultPolicy 返回规范打分策略。
func DefaultPolicy() Policy {
	return Policy{
		Capacity:       3,
		Luggage:        2,
		LuggageBags:    4,
		Comfort:        3,
		Family:         2,
		FamilySeats:    7,
		Business:       2,
		Party:          2,
		Recommended:    1,
		NewCar:         1,
		Luxury:         2,
		UpliftDivisor:  40,
		UpliftCap:      4,
		SamePrice:      1,
		PenaltyDivisor: 100,
		PenaltyFloor:   -2,
		Tiers: []Tier{
			{Ratio: 1.5, Bonus: 3},
			{Ratio: 1.2, Bonus: 2},
			{Ratio: 1.0, Bonus: 1},
		},
	}
}

var (
	familyGroups = []string{"SUV", "MINIVAN"}
	partyGroups  = []string{"SUV", "COUPE"}
)

// Score 计算 deal 对画像的匹配分，纯函数：相同输入得到完全相同的结果。
func (p Policy) Score(deal *core.Deal, profile *core.Profile, ref float64) float64 {
	score, _ := p.Explain(deal, profile, ref)
	return score
}

// Explain 计算匹配分并返回命中的规则名（用于 label / 解释）。
func (p Policy) Explain(deal *core.Deal, profile *core.Profile, ref float64) (float64, []string) {
	if deal == nil {
		return 0, nil
	}
	if profile == nil {
		profile = &core.Profile{}
	}

	var (
		score float64
		hits  []string
		v     = deal.Vehicle
		group = deal.Category()
	)
	add := func(name string, delta float64) {
		score += delta
		hits = append(hits, name)
	}

	if profile.Passengers > 0 && v.PassengersCount >= profile.Passengers {
		add("capacity", p.Capacity)
	}
	if profile.Luggage == core.LuggageMany && v.BagsCount >= p.LuggageBags {
		add("luggage", p.Luggage)
	}
	if profile.ComfortPriority == core.LevelHigh && (v.IsMoreLuxury || strings.Contains(group, "PREMIUM")) {
		add("comfort", p.Comfort)
	}
	switch profile.TripType {
	case core.TripFamily:
		if slices.Contains(familyGroups, group) || v.PassengersCount >= p.FamilySeats {
			add("family", p.Family)
		}
	case core.TripBusiness:
		if strings.Contains(group, "SEDAN") || v.IsMoreLuxury {
			add("business", p.Business)
		}
	case core.TripParty:
		if slices.Contains(partyGroups, group) || v.IsMoreLuxury {
			add("party", p.Party)
		}
	}

	if v.IsRecommended {
		add("recommended", p.Recommended)
	}
	if v.IsNewCar {
		add("new", p.NewCar)
	}
	if v.IsMoreLuxury {
		add("luxury", p.Luxury)
	}

	total := deal.Total()
	score += p.PriceComponent(total, ref)

	for _, tier := range p.Tiers {
		if total > ref*tier.Ratio {
			add("tier", tier.Bonus)
			break
		}
	}
	return score, hits
}

// PriceComponent 是 uplift 项：三种公式按 uplift 的符号互斥。
func (p Policy) PriceComponent(total, ref float64) float64 {
	uplift := total - ref
	switch {
	case uplift > 0:
		return math.Min(uplift/p.UpliftDivisor, p.UpliftCap)
	case uplift == 0:
		return p.SamePrice
	default:
		return math.Max(uplift/p.PenaltyDivisor, p.PenaltyFloor)
	}
}
