package utils

// Label 是排序链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由各 Node 自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // filter / rank / rerank / extract ...
}

// 链路中使用的标准 label key
const (
	LabelFiltered   = "filtered"   // 被哪个过滤器剔除
	LabelFailOpen   = "fail_open"  // 过滤结果为空时回退到原集合
	LabelRankModel  = "rank_model" // 规则打分策略名
	LabelMatch      = "match"      // 命中的打分规则
	LabelStrategy   = "strategy"   // 重排策略：llm_all / llm_window / rule
	LabelRerank     = "rerank"     // 重排来源：llm / rule
	LabelFallback   = "fallback"   // LLM 重排降级原因
	LabelCandidates = "candidates" // 过滤后的候选数量
)

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	case existing.Source == incoming.Source:
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
