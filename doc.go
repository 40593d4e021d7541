// Package upsell 是租车升级推荐工具包：从对话中抽取客户画像，对可升级车型做规则打分与可选的 LLM 重排，
// 并推荐保障套餐与附加项。
//
// 设计要点：
// - Pipeline-first: 排序逻辑通过 Node 串联（Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传，用于 explain 与观测
// - 降级优先: LLM 任何失败都同步回退到确定性的规则排序
package upsell

import (
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/ranker"
)

// 轻量 facade：便于直接 import "upsell" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

type Ranker = ranker.Hybrid
type RankRequest = ranker.RankRequest

const (
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

// NewRanker 见 ranker.New。
var NewRanker = ranker.New
