// Package recommend 把抽象需求与画像状态映射为带理由的保障/附加项推荐，并渲染车辆卡片。
package recommend

import (
	"slices"
	"sort"

	"github.com/rushteam/upsell/core"
)

// 推荐数量上限
const (
	MaxProtections = 3
	MaxAddons      = 5
)

// PriceKind 标记价格口径。
const (
	PriceTotal  = "total"
	PricePerDay = "per_day"
)

// Recommendation 是一条推荐：目录条目 + 分数 + 理由。
type Recommendation struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	PriceKind     string  `json:"price_kind"`
	Why           string  `json:"why"`
	Score         float64 `json:"score"`
	IsRecommended bool    `json:"is_recommended"`
}

// State 是推荐使用的画像派生状态。
type State struct {
	RiskAversion  core.Level
	TripType      core.TripType
	WinterDriving bool
	Kids          bool
}

// StateFromProfile 从画像派生状态，风险偏好未知时为 medium。
func StateFromProfile(p *core.Profile) State {
	if p == nil {
		return State{RiskAversion: core.LevelMedium}
	}
	st := State{
		RiskAversion:  p.RiskAversion,
		TripType:      p.TripType,
		WinterDriving: p.WinterDriving,
		Kids:          p.Kids,
	}
	if st.RiskAversion == "" {
		st.RiskAversion = core.LevelMedium
	}
	return st
}

func has(needs []string, need string) bool { return slices.Contains(needs, need) }

// sortAndCap 按分数降序稳定排序并截断。
func sortAndCap(recs []Recommendation, limit int) []Recommendation {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
