package recommend

import (
	"slices"
	"strings"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/extract"
)

// 附加项目录 id
const (
	AddonToll             = "T4"
	AddonAdditionalDriver = "AD"
)

// ChildSeatIDs 是儿童座椅类附加项的目录 id。
var ChildSeatIDs = []string{"BS", "CS", "BO"}

// Addons 为附加项打分，返回最多 5 条推荐（分数降序），价格为日价。
func Addons(groups []core.AddonGroup, st State, needs []string) []Recommendation {
	var recs []Recommendation
	childSeat := st.Kids || has(needs, extract.NeedChildSeat)

	for _, g := range groups {
		for _, opt := range g.Options {
			cd := opt.ChargeDetail

			var (
				score float64
				why   []string
			)
			if has(needs, extract.NeedToll) && cd.ID == AddonToll {
				score += 2
				why = append(why, "You mentioned highways / long drives.")
			}
			if has(needs, extract.NeedAdditionalDriver) && cd.ID == AddonAdditionalDriver {
				score += 2
				why = append(why, "You want to share the driving.")
			}
			if childSeat && slices.Contains(ChildSeatIDs, cd.ID) {
				score += 3
				why = append(why, "You travel with kids, a child seat is recommended.")
			}

			if score > 0 {
				price := opt.AdditionalInfo.Price.DisplayPrice
				recs = append(recs, Recommendation{
					ID:            cd.ID,
					Name:          cd.Title,
					Price:         price.Amount,
					Currency:      price.Currency,
					PriceKind:     PricePerDay,
					Why:           strings.Join(why, " "),
					Score:         score,
					IsRecommended: true,
				})
			}
		}
	}
	return sortAndCap(recs, MaxAddons)
}
