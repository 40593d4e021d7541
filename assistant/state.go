package assistant

import (
	"strings"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pkg/conv"
)

// applyStateUpdate 把助手返回的 state_update 合并进画像，只接受已知 key 与合法取值。
// 返回新的画像，不修改入参。
func applyStateUpdate(p *core.Profile, update map[string]any) *core.Profile {
	out := p.Clone()
	if out == nil {
		out = &core.Profile{}
	}
	if len(update) == 0 {
		return out
	}

	if n, ok := conv.ToInt(update["passengers"]); ok && n > 0 {
		out.Passengers = n
	}
	if v, ok := enum(update["luggage"], core.LuggageNormal, core.LuggageMany); ok {
		out.Luggage = v
	}
	if v, ok := enum(update["trip_type"], core.TripFamily, core.TripBusiness, core.TripParty, core.TripSolo); ok {
		out.TripType = v
	}
	if v, ok := enum(update["comfort_priority"], core.LevelLow, core.LevelHigh); ok {
		out.ComfortPriority = v
	}
	if v, ok := enum(update["risk_aversion"], core.LevelLow, core.LevelMedium, core.LevelHigh); ok {
		out.RiskAversion = v
	}
	if v, ok := enum(update["upgrade_openness"], core.LevelLow, core.LevelMedium, core.LevelHigh); ok {
		out.UpgradeOpenness = v
	}
	// kids / winter_driving 只会被置为 true
	if b, ok := update["kids"].(bool); ok && b {
		out.Kids = true
	}
	if b, ok := update["winter_driving"].(bool); ok && b {
		out.WinterDriving = true
	}
	return out
}

func enum[T ~string](v any, allowed ...T) (T, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}
