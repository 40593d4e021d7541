package filter

import (
	"context"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pkg/dsl"
)

// ExprFilter 是基于 CEL 表达式的保留条件：表达式为 false 的 deal 被剔除。
//
// 示例：`deal.vehicle.transmission == "AUTOMATIC"`、`deal.total <= ref * 2.0`
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式并返回过滤器。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string { return f.prg.String() }

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	var ref float64
	if rctx != nil {
		ref = rctx.ReferencePrice
	}
	keep, err := f.prg.Eval(item.Deal, profileOf(rctx), ref)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
