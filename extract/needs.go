package extract

// 保障类抽象需求
const (
	NeedFullCover    = "full_cover"
	NeedLiability    = "liability"
	NeedRoadside     = "roadside"
	NeedNoProtection = "no_protection"
)

// 附加项抽象需求
const (
	NeedToll             = "toll"
	NeedAdditionalDriver = "additional_driver"
	NeedChildSeat        = "child_seat"
)

// Needs 是一轮对话中识别出的抽象需求，由推荐器映射到具体目录项。
type Needs struct {
	Protections []string `json:"protections"`
	Addons      []string `json:"addons"`
}

var (
	fullCoverRe = wordsRe("full cover", "full coverage", "fully covered", "peace of mind", "zero deductible", "no deductible")
	liabilityRe = wordsRe("liability", "third party", "third-party")
	roadsideRe  = wordsRe("roadside", "breakdown", "break down", "flat tire", "flat tyre", "towing")

	tollRe      = wordsRe("toll", "tolls", "highway", "highways", "motorway", "motorways", "autobahn", "long drive", "long drives")
	driverRe    = wordsRe("share the driving", "second driver", "another driver", "additional driver", "both drive", "take turns driving")
	childSeatRe = wordsRe("child seat", "baby seat", "booster", "car seat")
)

// DetectNeeds 用关键词规则识别抽象需求；在 LLM 助手不可用时作为降级路径。
// 结果顺序固定（按常量声明顺序），且不含重复项。
func DetectNeeds(text string) Needs {
	t := normalize(text)
	var n Needs
	if t == "" {
		return n
	}

	if fullCoverRe.MatchString(t) {
		n.Protections = append(n.Protections, NeedFullCover)
	}
	if liabilityRe.MatchString(t) {
		n.Protections = append(n.Protections, NeedLiability)
	}
	if roadsideRe.MatchString(t) {
		n.Protections = append(n.Protections, NeedRoadside)
	}
	if riskLowRe.MatchString(t) {
		n.Protections = append(n.Protections, NeedNoProtection)
	}

	if tollRe.MatchString(t) {
		n.Addons = append(n.Addons, NeedToll)
	}
	if driverRe.MatchString(t) {
		n.Addons = append(n.Addons, NeedAdditionalDriver)
	}
	if childSeatRe.MatchString(t) {
		n.Addons = append(n.Addons, NeedChildSeat)
	}
	return n
}

// Merge 合并两组需求并去重，保留 a 的顺序在前。
func (n Needs) Merge(other Needs) Needs {
	return Needs{
		Protections: union(n.Protections, other.Protections),
		Addons:      union(n.Addons, other.Addons),
	}
}

// Has 判断需求列表是否包含 need。
func Has(needs []string, need string) bool {
	for _, n := range needs {
		if n == need {
			return true
		}
	}
	return false
}

func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if !Has(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}
