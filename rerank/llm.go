package rerank

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/llm"
)

// DefaultTemperature 重排使用的低温度，尽量得到稳定输出。
const DefaultTemperature float32 = 0.1

// LLMReranker 把候选摘要与客户画像交给模型，要求其只回复最优 K 个序号。
type LLMReranker struct {
	LLM         llm.Completer
	Temperature float32
}

// NewLLMReranker 创建使用默认温度的 LLMReranker。
func NewLLMReranker(c llm.Completer) *LLMReranker {
	return &LLMReranker{LLM: c, Temperature: DefaultTemperature}
}

func (r *LLMReranker) Rerank(ctx context.Context, req Request) ([]int, error) {
	if r.LLM == nil {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeUnavailable, "no completer configured")
	}
	n := len(req.Candidates)
	if n == 0 {
		return nil, nil
	}
	k := req.K
	if k <= 0 {
		k = core.DefaultK
	}
	k = min(k, n)

	resp, err := r.LLM.Complete(ctx, []llm.Message{llm.User(Prompt(req.Candidates, req.Profile, req.ReferencePrice, k))},
		llm.WithTemperature(r.Temperature))
	if err != nil {
		return nil, err
	}
	return ParseIndices(resp, n)
}

// Prompt 构造重排提示词。
func Prompt(items []*core.Item, profile *core.Profile, ref float64, k int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a car rental expert. Rank these %d vehicles for this customer from BEST to WORST match.\n\n", len(items))
	fmt.Fprintf(&b, "Customer needs: %s\n", CustomerNeeds(profile))
	fmt.Fprintf(&b, "Original booking price: %s\n\n", money(ref))
	b.WriteString("Available vehicles:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, Summary(it.Deal))
	}
	b.WriteString("\nInstructions:\n")
	b.WriteString("- Balance customer fit with upsell opportunity.\n")
	b.WriteString("- Do not pick something much more expensive if it's not clearly better.\n")
	b.WriteString("- Prefer vehicles that match passengers, luggage, trip type and comfort.\n")
	b.WriteString("- Value for money is important.\n\n")
	fmt.Fprintf(&b, "Respond with ONLY the top %d vehicle numbers in order, comma-separated (e.g., \"3,1,2\").", k)
	return b.String()
}

// Summary 是单个 deal 的一行描述。
func Summary(d *core.Deal) string {
	if d == nil {
		return "unknown vehicle"
	}
	v := d.Vehicle
	var tags []string
	if v.IsNewCar {
		tags = append(tags, "New")
	}
	if v.IsRecommended {
		tags = append(tags, "Recommended")
	}
	if v.IsMoreLuxury {
		tags = append(tags, "Luxury")
	}
	s := fmt.Sprintf("%s %s - %s, %d seats, %d bags, %s, %s, %s %s/day (%s total)",
		v.Brand, v.Model, v.GroupType, v.PassengersCount, v.BagsCount, v.TransmissionType, v.FuelType,
		money(d.Pricing.DisplayPrice.Amount), d.Pricing.DisplayPrice.Currency, money(d.Total()))
	if len(tags) > 0 {
		s += " [" + strings.Join(tags, ", ") + "]"
	}
	return s
}

// CustomerNeeds 把画像概括为一句话，未知画像返回 "general needs"。
func CustomerNeeds(p *core.Profile) string {
	if p == nil {
		return "general needs"
	}
	var parts []string
	if p.Passengers > 0 {
		parts = append(parts, fmt.Sprintf("%d passengers", p.Passengers))
	}
	if p.TripType != "" {
		parts = append(parts, string(p.TripType)+" trip")
	}
	if p.ComfortPriority != "" {
		parts = append(parts, string(p.ComfortPriority)+" comfort")
	}
	if p.Luggage != "" {
		parts = append(parts, string(p.Luggage)+" luggage")
	}
	if p.BudgetTotal > 0 {
		parts = append(parts, "budget: "+money(p.BudgetTotal))
	}
	if len(parts) == 0 {
		return "general needs"
	}
	return strings.Join(parts, ", ")
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
