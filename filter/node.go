package filter

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该 deal 就会被过滤掉。
//
// 过滤结果为空且输入非空时视为约束过严，返回原始集合（fail-open），
// 并写入 fail_open label。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

// NewHardFilterNode 返回包含容量/预算/行李三条硬约束的 FilterNode。
func NewHardFilterNode() *FilterNode {
	return &FilterNode{Filters: HardFilters()}
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		// 依次检查每个过滤器
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				n.Logger.Debug().Err(err).Str("filter", f.Name()).Str("vehicle", item.ID).Msg("filter error ignored")
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			item.PutLabel(utils.LabelFiltered, utils.Label{
				Value:  "true",
				Source: filterReason,
			})
			continue
		}

		out = append(out, item)
	}

	if len(out) == 0 {
		n.Logger.Debug().Int("candidates", len(items)).Msg("filters too strict, fail open")
		lbl := utils.Label{Value: "true", Source: "filter"}
		if rctx != nil {
			rctx.PutLabel(utils.LabelFailOpen, lbl)
		}
		for _, item := range items {
			if item != nil {
				item.PutLabel(utils.LabelFailOpen, lbl)
				out = append(out, item)
			}
		}
	}

	if rctx != nil {
		rctx.PutLabel(utils.LabelCandidates, utils.Label{Value: strconv.Itoa(len(out)), Source: "filter"})
	}
	return out, nil
}
