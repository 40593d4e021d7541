package recommend

import (
	"sort"
	"strings"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/extract"
)

// 理由文案
const (
	whyStrong    = "You prefer strong protection."
	whyLiability = "Liability is important for your trip."
	whyRoadside  = "Roadside help is useful for your conditions."
	whyFamily    = "Travelling with family usually benefits from better coverage."
	whyNoCover   = "You said you don't need extra protection."
	whyBalanced  = "Balanced protection for most customers."
	whyDefault   = "Matches your stated preferences."
)

// roadsideIncludeID 是目录中道路救援保障项的 id。
const roadsideIncludeID = "BC"

var (
	strongNames  = []string{"peace of mind", "cover the car & liability"}
	noCoverName  = "i don't need protection"
	roadsideHint = []string{"roadside", "breakdown"}
)

// Protections 为保障套餐打分，返回最多 3 条推荐（分数降序）。
//
// 所有套餐得分为 0 且目录非空时，回退为按总价排序的中位套餐。
func Protections(pkgs []core.ProtectionPackage, st State, needs []string) []Recommendation {
	var recs []Recommendation
	for i := range pkgs {
		pkg := &pkgs[i]
		name := normalize(pkg.Name)

		var (
			score float64
			why   []string
		)
		if has(needs, extract.NeedFullCover) || st.RiskAversion == core.LevelHigh {
			if containsAny(name, strongNames) {
				score += 3
				why = append(why, whyStrong)
			}
		}
		if has(needs, extract.NeedLiability) || st.TripType == core.TripBusiness {
			if strings.Contains(name, "liability") {
				score += 2
				why = append(why, whyLiability)
			}
		}
		if has(needs, extract.NeedRoadside) || st.WinterDriving {
			if hasRoadside(pkg) {
				score += 2
				why = append(why, whyRoadside)
			}
		}
		if st.Kids {
			score++
			why = append(why, whyFamily)
		}
		if has(needs, extract.NeedNoProtection) && strings.HasPrefix(name, noCoverName) {
			score += 100
			why = append(why, whyNoCover)
		}

		if score > 0 {
			text := strings.Join(why, " ")
			if text == "" {
				text = whyDefault
			}
			recs = append(recs, protectionRec(pkg, score, text))
		}
	}

	if len(recs) == 0 && len(pkgs) > 0 {
		return []Recommendation{protectionRec(medianByPrice(pkgs), 0, whyBalanced)}
	}
	return sortAndCap(recs, MaxProtections)
}

func protectionRec(pkg *core.ProtectionPackage, score float64, why string) Recommendation {
	return Recommendation{
		ID:            pkg.ID,
		Name:          pkg.Name,
		Price:         pkg.Price.TotalPrice.Amount,
		Currency:      pkg.Price.TotalPrice.Currency,
		PriceKind:     PriceTotal,
		Why:           why,
		Score:         score,
		IsRecommended: true,
	}
}

// medianByPrice 返回按总价升序排序后下标 len/2 的套餐。
func medianByPrice(pkgs []core.ProtectionPackage) *core.ProtectionPackage {
	idx := make([]int, len(pkgs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return pkgs[idx[a]].Price.TotalPrice.Amount < pkgs[idx[b]].Price.TotalPrice.Amount
	})
	return &pkgs[idx[len(idx)/2]]
}

func hasRoadside(pkg *core.ProtectionPackage) bool {
	for _, inc := range pkg.Includes {
		if inc.ID == roadsideIncludeID || containsAny(normalize(inc.Title), roadsideHint) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
