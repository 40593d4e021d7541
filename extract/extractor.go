// Package extract 从单轮对话文本中推断客户偏好。
//
// 规则互相独立、与执行顺序无关；未命中的文本不修改任何字段，也从不返回错误。
// 不访问目录或网络。
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rushteam/upsell/core"
)

var (
	familyRe   = wordsRe("kids", "kid", "family", "children", "child", "baby", "toddler")
	businessRe = wordsRe("business", "work", "meeting", "meetings", "conference", "client")
	partyRe    = wordsRe("party", "friends", "bachelor", "bachelorette", "festival")
	soloRe     = wordsRe("alone", "just me", "by myself", "solo", "on my own")
	childRe    = wordsRe("kids", "kid", "children", "child", "baby", "toddler")

	comfortRe = wordsRe("comfortable", "comfort", "luxury", "luxurious", "premium")
	luggageRe = wordsRe("many bags", "a lot of luggage", "lots of luggage", "many suitcases", "big suitcases", "lots of bags")
	budgetRe  = wordsRe("tight budget", "not too expensive", "cheap", "cheaper", "cheapest", "low budget", "don't want to spend too much", "on a budget")
	winterRe  = wordsRe("snow", "snowy", "winter", "ski", "skiing", "icy", "mountains")

	riskLowRe  = wordsRe("no insurance", "without insurance", "don't need protection", "no protection", "basic coverage is fine", "don't need insurance")
	riskHighRe = wordsRe("worried", "peace of mind", "full coverage", "full cover", "fully covered", "zero deductible", "no deductible")

	upgradeLowRe  = wordsRe("no upgrade", "keep my car", "not interested in an upgrade", "not interested in upgrading", "don't want an upgrade")
	upgradeHighRe = wordsRe("happy to pay more", "open to upgrade", "open to an upgrade", "willing to pay more",
		"want an upgrade", "want to upgrade", "like an upgrade", "like to upgrade", "love an upgrade", "happy to upgrade",
		"interested in an upgrade", "interested in upgrading", "upgrade me", "upgrade sounds")
	// 同一分句内否定词后 4 个词以内出现 upgrade，例如 "don't need an upgrade"
	upgradeNegRe = regexp.MustCompile(`\b(?:no|not|don't|dont|do not|never|without)\b(?:\s+[a-z']+){0,4}?\s+upgrad(?:e|es|ed|ing)\b`)

	passengersRe = regexp.MustCompile(`\b(\d+)\s*(people|persons|person|passengers|adults|travellers|travelers|kids|children|of us)\b`)
)

// Apply 返回合并了 text 中偏好的新画像，输入画像不会被修改。
//
// 规则：
//   - trip_type：仅在未知时设置；同一句出现多种出行类型时，文本中最先出现的获胜
//   - comfort_priority：出现舒适/豪华类词汇时总是置为 high
//   - passengers：数字 + 人数名词，总是覆盖（后面的陈述更具体）
//   - luggage：出现"很多行李"类表述时置为 many
//   - budget_total：出现预算约束时，仅在未知时设置为原始预订价
//   - kids / winter_driving：出现即置为 true，不会回退
//   - risk_aversion / upgrade_openness：以最近一次表述为准
func Apply(p *core.Profile, text string) *core.Profile {
	out := p.Clone()
	if out == nil {
		out = core.NewProfile(0)
	}
	t := normalize(text)
	if t == "" {
		return out
	}

	if out.TripType == "" {
		if tt, ok := tripType(t); ok {
			out.TripType = tt
		}
	}

	if comfortRe.MatchString(t) {
		out.ComfortPriority = core.LevelHigh
	}

	if m := passengersRe.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.Passengers = n
		}
	}

	if luggageRe.MatchString(t) {
		out.Luggage = core.LuggageMany
	}

	if budgetRe.MatchString(t) && out.BudgetTotal == 0 && out.ReferencePrice > 0 {
		out.BudgetTotal = out.ReferencePrice
	}

	if childRe.MatchString(t) {
		out.Kids = true
	}
	if winterRe.MatchString(t) {
		out.WinterDriving = true
	}

	switch {
	case riskLowRe.MatchString(t):
		out.RiskAversion = core.LevelLow
	case riskHighRe.MatchString(t):
		out.RiskAversion = core.LevelHigh
	}

	switch {
	case upgradeLowRe.MatchString(t), upgradeNegRe.MatchString(t):
		out.UpgradeOpenness = core.LevelLow
	case upgradeHighRe.MatchString(t):
		out.UpgradeOpenness = core.LevelHigh
	}

	return out
}

// tripType 返回文本中最先出现的出行类型。
func tripType(t string) (core.TripType, bool) {
	candidates := []struct {
		typ core.TripType
		re  *regexp.Regexp
	}{
		{core.TripFamily, familyRe},
		{core.TripBusiness, businessRe},
		{core.TripParty, partyRe},
		{core.TripSolo, soloRe},
	}

	best, bestPos := core.TripType(""), -1
	for _, c := range candidates {
		loc := c.re.FindStringIndex(t)
		if loc == nil {
			continue
		}
		if bestPos < 0 || loc[0] < bestPos {
			best, bestPos = c.typ, loc[0]
		}
	}
	return best, bestPos >= 0
}

func normalize(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.NewReplacer("’", "'", "‘", "'").Replace(t)
}

// wordsRe 匹配任意一个完整单词/短语（ASCII 词边界）。
func wordsRe(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
