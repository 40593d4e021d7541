package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferencePrice(t *testing.T) {
	deal := func(total float64, info string) Deal {
		return Deal{Pricing: Pricing{TotalPrice: Price{Amount: total}}, DealInfo: info}
	}
	tests := []struct {
		name  string
		deals []Deal
		want  float64
	}{
		{name: "booked category wins", deals: []Deal{deal(300, ""), deal(200, DealInfoBookedCategory)}, want: 200},
		{name: "first deal fallback", deals: []Deal{deal(310, ""), deal(200, "")}, want: 310},
		{name: "empty", deals: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferencePrice(tt.deals))
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("load profile: %w", ErrStoreNotFound)
	assert.True(t, errors.Is(err, ErrStoreNotFound))
	assert.True(t, IsStoreNotFound(err))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))

	cause := errors.New("dial tcp: refused")
	wrapped := WrapDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: fetch deals", cause)
	assert.True(t, IsUnavailable(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "catalog: fetch deals: dial tcp: refused", wrapped.Error())
}

func TestRecommendContext_TopK(t *testing.T) {
	var nilCtx *RecommendContext
	assert.Equal(t, DefaultK, nilCtx.TopK())
	assert.Equal(t, DefaultK, (&RecommendContext{}).TopK())
	assert.Equal(t, 5, (&RecommendContext{K: 5}).TopK())
}
