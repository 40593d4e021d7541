package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/extract"
)

func pkg(id, name string, total float64, includes ...string) core.ProtectionPackage {
	p := core.ProtectionPackage{
		ID:   id,
		Name: name,
		Price: core.ProtectionPrice{
			DisplayPrice: core.Price{Currency: "EUR", Amount: total / 5, Suffix: "/day"},
			TotalPrice:   core.Price{Currency: "EUR", Amount: total},
		},
	}
	for _, inc := range includes {
		p.Includes = append(p.Includes, core.CoverageItem{ID: inc, Title: "Cover " + inc})
	}
	return p
}

func packages() []core.ProtectionPackage {
	return []core.ProtectionPackage{
		pkg("none", "I don’t need protection", 0),
		pkg("basic", "Basic cover", 40, "LDW"),
		pkg("smart", "Smart liability", 75, "LDW", "TPL"),
		pkg("pom", "Peace of Mind", 120, "LDW", "TPL", "BC"),
	}
}

func recIDs(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestProtections_MedianFallback(t *testing.T) {
	pkgs := []core.ProtectionPackage{
		pkg("c", "Comfort", 90),
		pkg("a", "Entry", 10),
		pkg("b", "Standard", 50),
	}
	recs := Protections(pkgs, State{RiskAversion: core.LevelLow}, []string{extract.NeedRoadside})
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].ID)
	assert.Equal(t, whyBalanced, recs[0].Why)
	assert.True(t, recs[0].IsRecommended)
	assert.Equal(t, PriceTotal, recs[0].PriceKind)

	// 偶数个取 len/2
	pkgs = append(pkgs, pkg("d", "Max", 200))
	recs = Protections(pkgs, State{}, nil)
	assert.Equal(t, []string{"c"}, recIDs(recs))

	assert.Empty(t, Protections(nil, State{RiskAversion: core.LevelHigh}, nil))
}

func TestProtections_Scoring(t *testing.T) {
	tests := []struct {
		name  string
		st    State
		needs []string
		want  []string
	}{
		{"high risk picks peace of mind", State{RiskAversion: core.LevelHigh}, nil, []string{"pom"}},
		{"business wants liability", State{TripType: core.TripBusiness}, nil, []string{"smart"}},
		{"roadside need via include id", State{}, []string{extract.NeedRoadside}, []string{"pom"}},
		{"winter roadside", State{WinterDriving: true}, nil, []string{"pom"}},
		{"full cover and liability", State{}, []string{extract.NeedFullCover, extract.NeedLiability}, []string{"pom", "smart"}},
		{"no protection forced first", State{RiskAversion: core.LevelHigh}, []string{extract.NeedNoProtection}, []string{"none", "pom"}},
		{"kids capped at three", State{Kids: true}, []string{extract.NeedLiability}, []string{"smart", "none", "basic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recIDs(Protections(packages(), tt.st, tt.needs)))
		})
	}
}

func TestProtections_Why(t *testing.T) {
	recs := Protections(packages(), State{RiskAversion: core.LevelHigh, Kids: true}, []string{extract.NeedRoadside})
	require.NotEmpty(t, recs)
	assert.Equal(t, "pom", recs[0].ID)
	assert.Equal(t, 6.0, recs[0].Score)
	assert.Equal(t, whyStrong+" "+whyRoadside+" "+whyFamily, recs[0].Why)
	assert.Equal(t, 120.0, recs[0].Price)
	assert.Equal(t, "EUR", recs[0].Currency)
}

func TestStateFromProfile(t *testing.T) {
	assert.Equal(t, core.LevelMedium, StateFromProfile(nil).RiskAversion)
	st := StateFromProfile(&core.Profile{Kids: true, WinterDriving: true, TripType: core.TripFamily})
	assert.Equal(t, State{RiskAversion: core.LevelMedium, TripType: core.TripFamily, WinterDriving: true, Kids: true}, st)
	assert.Equal(t, core.LevelLow, StateFromProfile(&core.Profile{RiskAversion: core.LevelLow}).RiskAversion)
}

func addonGroups() []core.AddonGroup {
	opt := func(id, title string, daily float64, multi bool) core.AddonOption {
		return core.AddonOption{
			ChargeDetail: core.AddonChargeDetail{ID: id, Title: title, Description: title + " desc"},
			AdditionalInfo: core.AddonAdditionalInfo{
				Price:             core.AddonPrice{DisplayPrice: core.Price{Currency: "EUR", Amount: daily, Suffix: "/day"}},
				SelectionStrategy: core.SelectionStrategy{IsMultiSelectionAllowed: multi},
			},
		}
	}
	return []core.AddonGroup{
		{ID: 1, Name: "Drivers", Options: []core.AddonOption{opt("AD", "Additional driver", 12, true), opt("YD", "Young driver", 15, false)}},
		{ID: 2, Name: "Family", Options: []core.AddonOption{opt("BS", "Baby seat", 9, true), opt("CS", "Child seat", 9, true), opt("BO", "Booster", 6, true)}},
		{ID: 3, Name: "Travel", Options: []core.AddonOption{opt("T4", "Toll service", 4.5, false), opt("GP", "Navigation", 7, false)}},
	}
}

func TestAddons(t *testing.T) {
	assert.Empty(t, Addons(addonGroups(), State{}, nil))

	recs := Addons(addonGroups(), State{}, []string{extract.NeedToll, extract.NeedAdditionalDriver})
	assert.Equal(t, []string{"AD", "T4"}, recIDs(recs))
	assert.Equal(t, PricePerDay, recs[1].PriceKind)
	assert.Equal(t, 4.5, recs[1].Price)
	assert.Equal(t, "You mentioned highways / long drives.", recs[1].Why)

	recs = Addons(addonGroups(), State{Kids: true}, []string{extract.NeedToll, extract.NeedAdditionalDriver})
	assert.Equal(t, []string{"BS", "CS", "BO", "AD", "T4"}, recIDs(recs))

	recs = Addons(addonGroups(), State{}, []string{extract.NeedChildSeat})
	assert.Equal(t, []string{"BS", "CS", "BO"}, recIDs(recs))
}

func TestAddons_CappedAtFive(t *testing.T) {
	groups := addonGroups()
	extra := groups[1].Options
	groups = append(groups, core.AddonGroup{ID: 4, Name: "More", Options: extra})
	recs := Addons(groups, State{Kids: true}, []string{extract.NeedToll})
	assert.Len(t, recs, MaxAddons)
}

func TestCardAndReason(t *testing.T) {
	d := core.Deal{
		Vehicle: core.Vehicle{
			ID: "v1", Brand: "SKODA", Model: "ENYAQ", GroupType: "SUV", PassengersCount: 5, BagsCount: 3,
			TransmissionType: "AUTOMATIC", FuelType: "ELECTRIC", IsNewCar: true, IsMoreLuxury: true,
			Images: []string{"https://img/1.png", "https://img/2.png"},
		},
		Pricing: core.Pricing{
			DiscountPercentage: 15,
			DisplayPrice:       core.Price{Currency: "EUR", Amount: 12.5},
			TotalPrice:         core.Price{Currency: "EUR", Amount: 480},
		},
	}
	assert.Equal(t, "SKODA ENYAQ (SUV) · 5 seats · 3 bags · AUTOMATIC · ELECTRIC · new car · more luxury · +12.5 EUR/day (≈ 480 total)", Reason(&d))

	it := core.NewItem(0, &d)
	it.Score = 7.25
	c := NewCard(it, 400)
	assert.Equal(t, "SKODA ENYAQ", c.Name)
	assert.Equal(t, "https://img/1.png", c.Image)
	assert.Equal(t, 80.0, c.UpgradeTotal)
	assert.Equal(t, []string{"New", "Luxury", "15% off"}, c.Tags)
	assert.Equal(t, 7.25, c.Score)
	assert.Equal(t, Reason(&d), c.Reason)

	d.Vehicle.BagsCount = 0
	assert.NotContains(t, Reason(&d), "bags")

	assert.Len(t, Cards([]*core.Item{it, nil}, 400), 1)
}

func TestSummaries(t *testing.T) {
	pkgs := packages()
	pkgs[3].Includes = append(pkgs[3].Includes, core.CoverageItem{ID: "X", Title: "Glass"})
	s := SummarizeProtections(pkgs)
	assert.Contains(t, s, "1. I don’t need protection – EUR 0/day. Includes: Basic coverages only")
	assert.Contains(t, s, "4. Peace of Mind – EUR 24/day. Includes: Cover LDW, Cover TPL, Cover BC, ...")
	assert.Equal(t, "No protection packages available.", SummarizeProtections(nil))

	a := SummarizeAddons(addonGroups())
	assert.Contains(t, a, "Group: Drivers\n  - Additional driver – EUR 12/day, multiple allowed. Additional driver desc")
	assert.Contains(t, a, "  - Toll service – EUR 4.5/day, single selection.")
	assert.Equal(t, "No addons available.", SummarizeAddons(nil))

	r := SummarizeRecommendations(Addons(addonGroups(), State{}, []string{extract.NeedToll}))
	assert.Equal(t, "1. Toll service – EUR 4.5/day. You mentioned highways / long drives.", r)
}
