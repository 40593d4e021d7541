package core

import "github.com/rushteam/upsell/pkg/utils"

// DefaultK 是未指定 K 时返回的推荐数量。
const DefaultK = 3

// RecommendContext 承载会话/画像/请求参数，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	SessionID string

	// Profile 是当前会话的累积画像，不可为空
	Profile *Profile

	// Registered 是注册用户画像，为空表示匿名用户
	Registered *RegisteredProfile

	// ReferencePrice 原始预订总价，用于计算 uplift
	ReferencePrice float64

	// K 期望返回的数量
	K int

	// UseLLM 是否允许 LLM 重排
	UseLLM bool

	// Labels 是请求级标签，记录策略选择、降级原因等
	Labels map[string]utils.Label
}

// TopK 返回有效的 K（<=0 时使用 DefaultK）。
func (rctx *RecommendContext) TopK() int {
	if rctx == nil || rctx.K <= 0 {
		return DefaultK
	}
	return rctx.K
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
