package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/upsell/core"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		in   *core.Profile
		text string
		want func(t *testing.T, p *core.Profile)
	}{
		{
			name: "people and business on empty profile",
			in:   core.NewProfile(200),
			text: "We are 5 people traveling for business",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, 5, p.Passengers)
				assert.Equal(t, core.TripBusiness, p.TripType)
				assert.Empty(t, p.ComfortPriority)
				assert.Zero(t, p.BudgetTotal)
			},
		},
		{
			name: "family terms set trip type and kids",
			in:   core.NewProfile(200),
			text: "Road trip with my kids",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.TripFamily, p.TripType)
				assert.True(t, p.Kids)
			},
		},
		{
			name: "trip type is sticky",
			in:   &core.Profile{TripType: core.TripFamily},
			text: "actually it's a business meeting",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.TripFamily, p.TripType)
			},
		},
		{
			name: "earliest trip term wins",
			in:   core.NewProfile(0),
			text: "a business trip, but my family joins me",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.TripBusiness, p.TripType)
			},
		},
		{
			name: "earliest trip term wins reversed",
			in:   core.NewProfile(0),
			text: "family holiday with one work call",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.TripFamily, p.TripType)
			},
		},
		{
			name: "party and solo",
			in:   core.NewProfile(0),
			text: "going to a festival with friends",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.TripParty, p.TripType)
			},
		},
		{
			name: "passengers always overwrite",
			in:   &core.Profile{Passengers: 2},
			text: "sorry, 4 adults",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, 4, p.Passengers)
			},
		},
		{
			name: "comfort luggage budget",
			in:   core.NewProfile(180),
			text: "Something comfortable, we have a lot of luggage but a tight budget",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelHigh, p.ComfortPriority)
				assert.Equal(t, core.LuggageMany, p.Luggage)
				assert.Equal(t, 180.0, p.BudgetTotal)
			},
		},
		{
			name: "budget only fills empty field",
			in:   &core.Profile{ReferencePrice: 180, BudgetTotal: 300},
			text: "it should be cheap",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, 300.0, p.BudgetTotal)
			},
		},
		{
			name: "curly apostrophe",
			in:   core.NewProfile(120),
			text: "I don’t want to spend too much",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, 120.0, p.BudgetTotal)
			},
		},
		{
			name: "risk and upgrade openness",
			in:   &core.Profile{RiskAversion: core.LevelLow, UpgradeOpenness: core.LevelLow},
			text: "I want peace of mind and I'm happy to pay more",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelHigh, p.RiskAversion)
				assert.Equal(t, core.LevelHigh, p.UpgradeOpenness)
			},
		},
		{
			name: "negative upgrade wins over bare upgrade",
			in:   core.NewProfile(0),
			text: "no upgrade please, no insurance either",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelLow, p.UpgradeOpenness)
				assert.Equal(t, core.LevelLow, p.RiskAversion)
			},
		},
		{
			name: "negated upgrade",
			in:   &core.Profile{UpgradeOpenness: core.LevelHigh},
			text: "I don't need an upgrade",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelLow, p.UpgradeOpenness)
			},
		},
		{
			name: "not interested in any upgrade",
			in:   core.NewProfile(0),
			text: "not interested in any upgrade",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelLow, p.UpgradeOpenness)
			},
		},
		{
			name: "affirmative upgrade",
			in:   core.NewProfile(0),
			text: "I'd like an upgrade",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelHigh, p.UpgradeOpenness)
			},
		},
		{
			name: "negation in another clause",
			in:   core.NewProfile(0),
			text: "no problem, upgrade me",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelHigh, p.UpgradeOpenness)
			},
		},
		{
			name: "upgrade mention without intent",
			in:   &core.Profile{UpgradeOpenness: core.LevelMedium},
			text: "what does the upgrade include?",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, core.LevelMedium, p.UpgradeOpenness)
			},
		},
		{
			name: "winter driving",
			in:   core.NewProfile(0),
			text: "heading to the mountains to ski",
			want: func(t *testing.T, p *core.Profile) {
				assert.True(t, p.WinterDriving)
			},
		},
		{
			name: "word boundaries",
			in:   core.NewProfile(100),
			text: "our network is cheapskate-proof at homework",
			want: func(t *testing.T, p *core.Profile) {
				assert.Empty(t, p.TripType)
				assert.Zero(t, p.BudgetTotal)
			},
		},
		{
			name: "comparative budget",
			in:   core.NewProfile(100),
			text: "something cheaper please",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, 100.0, p.BudgetTotal)
			},
		},
		{
			name: "unmatched text leaves profile untouched",
			in:   &core.Profile{Passengers: 3, ReferencePrice: 90},
			text: "hello there!",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, &core.Profile{Passengers: 3, ReferencePrice: 90}, p)
			},
		},
		{
			name: "nil profile",
			in:   nil,
			text: "2 people",
			want: func(t *testing.T, p *core.Profile) {
				assert.Equal(t, 2, p.Passengers)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, Apply(tt.in, tt.text))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := core.NewProfile(200)
	out := Apply(in, "3 people, luxury please")
	assert.Zero(t, in.Passengers)
	assert.Empty(t, in.ComfortPriority)
	assert.Equal(t, 3, out.Passengers)
}

func TestApply_IdempotentForStickyFields(t *testing.T) {
	utterances := []string{
		"family trip with the kids",
		"we're on a tight budget",
		"business meeting in Munich",
		"lots of luggage, snow expected",
	}
	for _, u := range utterances {
		t.Run(u, func(t *testing.T) {
			once := Apply(core.NewProfile(150), u)
			twice := Apply(once, u)
			assert.Equal(t, once, twice)
		})
	}
}

func TestDetectNeeds(t *testing.T) {
	tests := []struct {
		text string
		want Needs
	}{
		{"", Needs{}},
		{"I want full coverage and roadside assistance", Needs{Protections: []string{NeedFullCover, NeedRoadside}}},
		{"no protection, just liability", Needs{Protections: []string{NeedLiability, NeedNoProtection}}},
		{"long drive on the autobahn and my wife is the second driver", Needs{Addons: []string{NeedToll, NeedAdditionalDriver}}},
		{"we need a child seat", Needs{Addons: []string{NeedChildSeat}}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectNeeds(tt.text))
		})
	}
}

func TestNeeds_Merge(t *testing.T) {
	a := Needs{Protections: []string{NeedFullCover}, Addons: []string{NeedToll}}
	b := Needs{Protections: []string{NeedFullCover, NeedRoadside}}
	got := a.Merge(b)
	assert.Equal(t, []string{NeedFullCover, NeedRoadside}, got.Protections)
	assert.Equal(t, []string{NeedToll}, got.Addons)
	assert.Equal(t, Needs{}, Needs{}.Merge(Needs{}))
	assert.True(t, Has(got.Addons, NeedToll))
	assert.False(t, Has(got.Addons, NeedChildSeat))
}
