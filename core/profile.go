package core

import "time"

// Luggage 行李量
type Luggage string

const (
	LuggageNormal Luggage = "normal"
	LuggageMany   Luggage = "many"
)

// TripType 出行类型
type TripType string

const (
	TripFamily   TripType = "family"
	TripBusiness TripType = "business"
	TripParty    TripType = "party"
	TripSolo     TripType = "solo"
)

// Level 是 low / medium / high 三档偏好。
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Profile 是单个 booking / 会话的累积偏好画像。
//
// 一句话定义：Profile = 多轮对话中逐步推断出的客户需求
//
// 约定：
//   - 零值表示"未知"（Passengers == 0、BudgetTotal == 0、枚举为空串）
//   - 字段一旦设置即保持，除非后续语句显式覆盖（由 extract 包决定规则）
//   - ReferencePrice 在创建时固定，为原始预订总价
type Profile struct {
	Passengers      int      `json:"passengers,omitempty"`
	Luggage         Luggage  `json:"luggage,omitempty"`
	BudgetTotal     float64  `json:"budget_total,omitempty"`
	TripType        TripType `json:"trip_type,omitempty"`
	ComfortPriority Level    `json:"comfort_priority,omitempty"`
	RiskAversion    Level    `json:"risk_aversion,omitempty"`
	UpgradeOpenness Level    `json:"upgrade_openness,omitempty"`

	// 派生标记：驱动保障/附加项推荐
	Kids          bool `json:"kids,omitempty"`
	WinterDriving bool `json:"winter_driving,omitempty"`

	ReferencePrice float64   `json:"original_total_price"`
	UpdateTime     time.Time `json:"update_time"`
}

// NewProfile 创建一个新的画像，ReferencePrice 固定为原始预订总价。
func NewProfile(referencePrice float64) *Profile {
	return &Profile{
		ReferencePrice: referencePrice,
		UpdateTime:     time.Now(),
	}
}

// Clone 返回浅拷贝（Profile 只包含值类型字段）。
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// RegisteredProfile 是注册用户的长期偏好，存在时作为额外打分项叠加在规则打分之上。
type RegisteredProfile struct {
	UserID                string `json:"id"`
	PreferredTransmission string `json:"preferred_transmission,omitempty"`
	FuelPreference        string `json:"fuel_preference,omitempty"`
	PreferredVehicleType  string `json:"preferred_vehicle_type,omitempty"`
	PowerPriority         Level  `json:"power_priority,omitempty"`
	// low / medium / high / very_high
	UpsellLikelihood string `json:"upsell_likelihood,omitempty"`
	HasKids          bool   `json:"has_kids,omitempty"`
	IsFamilyUser     bool   `json:"is_family_user,omitempty"`
	ComfortPriority  Level  `json:"comfort_priority,omitempty"`
}
