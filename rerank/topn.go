package rerank

import (
	"context"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个 deal。
// 通常在 rank.rule 之后使用，构成纯规则的确定性排序链路。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        filter.NewHardFilterNode(),
//	        rank.NewRuleNode(),
//	        &rerank.TopNNode{},  // 截取 rctx.K 个
//	    },
//	}
type TopNNode struct {
	// N 要保留的数量；N <= 0 时使用 rctx.TopK()
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 {
		limit = rctx.TopK()
	}

	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
