package profile

import "github.com/rushteam/upsell/core"

// assumedFamilySize 是注册用户有孩子但未说明人数时的默认乘客数。
const assumedFamilySize = 4

// Seed 用注册用户的长期偏好预填画像，只填未知字段，返回新画像。
func Seed(p *core.Profile, reg *core.RegisteredProfile) *core.Profile {
	out := p.Clone()
	if out == nil {
		out = core.NewProfile(0)
	}
	if reg == nil {
		return out
	}

	if out.TripType == "" && (reg.HasKids || reg.IsFamilyUser) {
		out.TripType = core.TripFamily
	}
	if out.ComfortPriority == "" && reg.ComfortPriority != "" {
		out.ComfortPriority = reg.ComfortPriority
	}
	if reg.HasKids {
		out.Kids = true
		if out.Passengers == 0 {
			out.Passengers = assumedFamilySize
		}
	}
	return out
}
