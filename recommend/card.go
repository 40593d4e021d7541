package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/upsell/core"
)

// Card 是排序结果中单辆车的展示卡片。
type Card struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Image        string   `json:"image,omitempty"`
	GroupType    string   `json:"group_type"`
	Passengers   int      `json:"passengers"`
	Bags         int      `json:"bags"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuel_type"`
	DailyPrice   float64  `json:"daily_price"`
	TotalPrice   float64  `json:"total_price"`
	Currency     string   `json:"currency"`
	UpgradeTotal float64  `json:"upgrade_total"` // 相对原始预订的总价差
	Tags         []string `json:"tags"`
	Score        float64  `json:"score"`
	Reason       string   `json:"reason"`
}

// NewCard 渲染卡片，ref 为原始预订总价。
func NewCard(it *core.Item, ref float64) Card {
	d := it.Deal
	v := d.Vehicle
	p := d.Pricing

	tags := make([]string, 0, 4)
	if v.IsRecommended {
		tags = append(tags, "Recommended")
	}
	if v.IsNewCar {
		tags = append(tags, "New")
	}
	if v.IsMoreLuxury {
		tags = append(tags, "Luxury")
	}
	if p.DiscountPercentage > 0 {
		tags = append(tags, num(p.DiscountPercentage)+"% off")
	}

	c := Card{
		ID:           v.ID,
		Name:         strings.TrimSpace(v.Brand + " " + v.Model),
		Brand:        v.Brand,
		Model:        v.Model,
		GroupType:    v.GroupType,
		Passengers:   v.PassengersCount,
		Bags:         v.BagsCount,
		Transmission: v.TransmissionType,
		FuelType:     v.FuelType,
		DailyPrice:   p.DisplayPrice.Amount,
		TotalPrice:   p.TotalPrice.Amount,
		Currency:     p.DisplayPrice.Currency,
		UpgradeTotal: p.TotalPrice.Amount - ref,
		Tags:         tags,
		Score:        it.Score,
		Reason:       Reason(d),
	}
	if len(v.Images) > 0 {
		c.Image = v.Images[0]
	}
	return c
}

// Cards 渲染一组卡片。
func Cards(items []*core.Item, ref float64) []Card {
	out := make([]Card, 0, len(items))
	for _, it := range items {
		if it != nil && it.Deal != nil {
			out = append(out, NewCard(it, ref))
		}
	}
	return out
}

// Reason 是车辆的一行理由，形如
// "BRAND MODEL (GROUP) · 5 seats · 3 bags · AUTOMATIC · PETROL · new car · +12 EUR/day (≈ 480 total)"。
func Reason(d *core.Deal) string {
	v := d.Vehicle
	p := d.Pricing

	parts := []string{fmt.Sprintf("%s %s (%s)", v.Brand, v.Model, v.GroupType)}
	parts = append(parts, fmt.Sprintf("%d seats", v.PassengersCount))
	if v.BagsCount > 0 {
		parts = append(parts, fmt.Sprintf("%d bags", v.BagsCount))
	}
	parts = append(parts, v.TransmissionType, v.FuelType)
	if v.IsNewCar {
		parts = append(parts, "new car")
	}
	if v.IsRecommended {
		parts = append(parts, "recommended")
	}
	if v.IsMoreLuxury {
		parts = append(parts, "more luxury")
	}
	parts = append(parts, fmt.Sprintf("+%s %s/day (≈ %s total)",
		num(p.DisplayPrice.Amount), p.DisplayPrice.Currency, num(p.TotalPrice.Amount)))
	return strings.Join(parts, " · ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
