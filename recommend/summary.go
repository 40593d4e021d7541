package recommend

import (
	"fmt"
	"strings"

	"github.com/rushteam/upsell/core"
)

// SummarizeProtections 生成保障套餐的文本摘要，供对话上下文使用。
func SummarizeProtections(pkgs []core.ProtectionPackage) string {
	if len(pkgs) == 0 {
		return "No protection packages available."
	}
	lines := make([]string, 0, len(pkgs))
	for i, pkg := range pkgs {
		price := pkg.Price.DisplayPrice
		includes := "Basic coverages only"
		if n := len(pkg.Includes); n > 0 {
			titles := make([]string, 0, 3)
			for _, inc := range pkg.Includes[:min(n, 3)] {
				titles = append(titles, inc.Title)
			}
			includes = strings.Join(titles, ", ")
			if n > 3 {
				includes += ", ..."
			}
		}
		lines = append(lines, fmt.Sprintf("%d. %s – %s %s%s. Includes: %s",
			i+1, pkg.Name, price.Currency, num(price.Amount), price.Suffix, includes))
	}
	return strings.Join(lines, "\n")
}

// SummarizeAddons 生成附加项的分组文本摘要。
func SummarizeAddons(groups []core.AddonGroup) string {
	if len(groups) == 0 {
		return "No addons available."
	}
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "Group: %s\n", g.Name)
		for _, opt := range g.Options {
			price := opt.AdditionalInfo.Price.DisplayPrice
			mode := "single selection"
			if opt.AdditionalInfo.SelectionStrategy.IsMultiSelectionAllowed {
				mode = "multiple allowed"
			}
			line := fmt.Sprintf("  - %s – %s %s%s, %s.", opt.ChargeDetail.Title, price.Currency, num(price.Amount), price.Suffix, mode)
			if desc := strings.TrimSpace(opt.ChargeDetail.Description); desc != "" {
				line += " " + desc
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// SummarizeRecommendations 把推荐列表渲染为编号文本。
func SummarizeRecommendations(recs []Recommendation) string {
	lines := make([]string, 0, len(recs))
	for i, r := range recs {
		unit := ""
		if r.PriceKind == PricePerDay {
			unit = "/day"
		}
		lines = append(lines, fmt.Sprintf("%d. %s – %s %s%s. %s", i+1, r.Name, r.Currency, num(r.Price), unit, r.Why))
	}
	return strings.Join(lines, "\n")
}
