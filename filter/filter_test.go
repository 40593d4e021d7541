package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pkg/utils"
	"github.com/rushteam/upsell/store"
)

func mkDeal(id string, seats, bags int, total float64) core.Deal {
	return core.Deal{
		Vehicle: core.Vehicle{ID: id, PassengersCount: seats, BagsCount: bags, TransmissionType: "MANUAL"},
		Pricing: core.Pricing{TotalPrice: core.Price{Currency: "EUR", Amount: total}},
	}
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func run(t *testing.T, n *FilterNode, profile *core.Profile, deals ...core.Deal) ([]*core.Item, *core.RecommendContext) {
	t.Helper()
	rctx := &core.RecommendContext{Profile: profile, ReferencePrice: 100}
	out, err := n.Process(context.Background(), rctx, core.ItemsFromDeals(deals))
	require.NoError(t, err)
	return out, rctx
}

func TestHardFilters(t *testing.T) {
	deals := []core.Deal{
		mkDeal("small", 4, 2, 100),
		mkDeal("big", 7, 4, 200),
		mkDeal("pricey", 7, 5, 400),
	}

	tests := []struct {
		name    string
		profile core.Profile
		want    []string
	}{
		{"no constraints", core.Profile{}, []string{"small", "big", "pricey"}},
		{"passengers", core.Profile{Passengers: 5}, []string{"big", "pricey"}},
		{"budget ceiling", core.Profile{BudgetTotal: 200}, []string{"small", "big"}},
		{"budget generous", core.Profile{BudgetTotal: 300}, []string{"small", "big", "pricey"}},
		{"luggage", core.Profile{Luggage: core.LuggageMany}, []string{"big", "pricey"}},
		{"combined", core.Profile{Passengers: 6, BudgetTotal: 200, Luggage: core.LuggageMany}, []string{"big"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := tt.profile
			out, rctx := run(t, NewHardFilterNode(), &profile, deals...)
			assert.Equal(t, tt.want, ids(out))
			_, failOpen := rctx.GetLabel(utils.LabelFailOpen)
			assert.False(t, failOpen)
		})
	}
}

func TestFilterNode_FailOpen(t *testing.T) {
	deals := []core.Deal{mkDeal("a", 4, 2, 100), mkDeal("b", 5, 2, 150)}
	out, rctx := run(t, NewHardFilterNode(), &core.Profile{Passengers: 9}, deals...)

	assert.Equal(t, []string{"a", "b"}, ids(out))
	lbl, ok := rctx.GetLabel(utils.LabelFailOpen)
	require.True(t, ok)
	assert.Equal(t, "true", lbl.Value)
	_, ok = out[0].GetLabel(utils.LabelFailOpen)
	assert.True(t, ok)
	reason, _ := out[0].GetLabel(utils.LabelFiltered)
	assert.Equal(t, "filter.passengers", reason.Source)
}

func TestFilterNode_NeverEmptyForNonEmptyInput(t *testing.T) {
	profiles := []core.Profile{
		{Passengers: 100},
		{BudgetTotal: 1},
		{Luggage: core.LuggageMany},
		{Passengers: 100, BudgetTotal: 1, Luggage: core.LuggageMany},
	}
	for _, p := range profiles {
		profile := p
		out, _ := run(t, NewHardFilterNode(), &profile, mkDeal("x", 2, 0, 999))
		assert.Len(t, out, 1)
	}

	out, _ := run(t, NewHardFilterNode(), &core.Profile{Passengers: 3})
	assert.Empty(t, out)
}

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }
func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("broken")
}

func TestFilterNode_ErrorsIgnored(t *testing.T) {
	out, _ := run(t, &FilterNode{Filters: []Filter{errFilter{}}}, &core.Profile{}, mkDeal("a", 4, 2, 100))
	assert.Equal(t, []string{"a"}, ids(out))
}

func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter(`deal.vehicle.transmission == "AUTOMATIC" || deal.total <= ref`)
	require.NoError(t, err)
	assert.Contains(t, f.Expr(), "AUTOMATIC")

	auto := mkDeal("auto", 5, 3, 300)
	auto.Vehicle.TransmissionType = "AUTOMATIC"
	out, _ := run(t, &FilterNode{Filters: []Filter{f}}, &core.Profile{},
		mkDeal("cheap-manual", 5, 3, 90), mkDeal("pricey-manual", 5, 3, 300), auto)
	assert.Equal(t, []string{"cheap-manual", "auto"}, ids(out))

	_, err = NewExprFilter(`"not a bool"`)
	require.Error(t, err)
}

func TestExprFilter_Profile(t *testing.T) {
	f, err := NewExprFilter(`!profile.kids || deal.vehicle.passengers >= 5`)
	require.NoError(t, err)
	out, _ := run(t, &FilterNode{Filters: []Filter{f}}, &core.Profile{Kids: true},
		mkDeal("two", 2, 1, 100), mkDeal("five", 5, 3, 100))
	assert.Equal(t, []string{"five"}, ids(out))
}

func TestBlocklistFilter(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	f := NewBlocklistFilter([]string{"a"}, kv, "upsell:blocked")
	n := &FilterNode{Filters: []Filter{f}}
	deals := []core.Deal{mkDeal("a", 4, 2, 100), mkDeal("b", 4, 2, 100), mkDeal("c", 4, 2, 100)}

	out, _ := run(t, n, &core.Profile{}, deals...)
	assert.Equal(t, []string{"b", "c"}, ids(out))

	require.NoError(t, kv.Set(ctx, "upsell:blocked", []byte(`["c"]`)))
	out, _ = run(t, n, &core.Profile{}, deals...)
	assert.Equal(t, []string{"b"}, ids(out))
}
