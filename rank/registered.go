package rank

import (
	"strings"

	"github.com/rushteam/upsell/core"
)

// RegisteredBonus 是注册用户的额外打分项，叠加在规范打分之上；无注册画像时不生效。
type RegisteredBonus struct {
	Transmission float64
	Fuel         float64
	VehicleType  float64
	Power        float64
	UpsellHigh   float64
	UpsellLow    float64
}

// DefaultRegisteredBonus 返回默认的注册用户加分。
func DefaultRegisteredBonus() RegisteredBonus {
	return RegisteredBonus{
		Transmission: 2,
		Fuel:         2,
		VehicleType:  3,
		Power:        2,
		UpsellHigh:   2,
		UpsellLow:    -1,
	}
}

// Score 计算注册用户加分。
func (b RegisteredBonus) Score(deal *core.Deal, reg *core.RegisteredProfile) float64 {
	if deal == nil || reg == nil {
		return 0
	}
	v := deal.Vehicle
	var score float64

	if pref := strings.ToLower(reg.PreferredTransmission); pref != "" &&
		strings.Contains(strings.ToLower(v.TransmissionType), pref) {
		score += b.Transmission
	}
	if pref := strings.ToLower(reg.FuelPreference); pref != "" &&
		strings.Contains(strings.ToLower(v.FuelType), pref) {
		score += b.Fuel
	}
	if pref := strings.ToLower(reg.PreferredVehicleType); pref != "" {
		group := strings.ToLower(v.GroupType)
		if group != "" && (strings.Contains(pref, group) || strings.Contains(group, pref)) {
			score += b.VehicleType
		}
	}
	if reg.PowerPriority == core.LevelHigh &&
		(v.IsMoreLuxury || strings.Contains(strings.ToLower(v.GroupType), "sport")) {
		score += b.Power
	}

	switch strings.ToLower(reg.UpsellLikelihood) {
	case "high", "very_high":
		score += b.UpsellHigh
	case "low":
		score += b.UpsellLow
	}
	return score
}
