// Package rerank 实现 LLM 重排能力与混合重排 Node：按候选规模选择策略，任何失败都降级为规则排序。
package rerank

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/upsell/core"
)

var (
	// ErrMalformedResponse 模型回复无法解析为序号列表。
	ErrMalformedResponse = errors.New("rerank: malformed response")
	// ErrIndexOutOfRange 模型回复的序号超出候选范围。
	ErrIndexOutOfRange = errors.New("rerank: index out of range")
)

// Request 是一次重排请求。Candidates 已按规则分数降序排列。
type Request struct {
	Candidates     []*core.Item
	Profile        *core.Profile
	ReferencePrice float64
	K              int
}

// Reranker 返回 Candidates 中最优的 K 个位置（0 起始，按优先级排序）。
type Reranker interface {
	Rerank(ctx context.Context, req Request) ([]int, error)
}

// RerankerFunc 把函数适配为 Reranker。
type RerankerFunc func(ctx context.Context, req Request) ([]int, error)

func (f RerankerFunc) Rerank(ctx context.Context, req Request) ([]int, error) { return f(ctx, req) }

// ParseIndices 解析 "3,1,2" 形式的 1 起始序号列表，返回 0 起始位置。
// n 为候选数量。允许外层引号、空白与末尾句点。
func ParseIndices(resp string, n int) ([]int, error) {
	s := strings.TrimSpace(resp)
	s = strings.Trim(s, "\"'`[]()")
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedResponse)
	}

	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedResponse, resp)
		}
		if v < 1 || v > n {
			return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrIndexOutOfRange, v, n)
		}
		out = append(out, v-1)
	}
	return out, nil
}

// ApplyOrder 把重排结果应用到规则排序列表上，返回最多 k 个 item。
//
// window 是交给重排器的候选数量（ranked 的前缀），位置必须落在 [0, window) 内；
// window <= 0 或超过 len(ranked) 时取 len(ranked)。
// err 非空或任一位置越界时返回规则排序的前 k 个，并返回降级原因；
// 重复位置忽略，不足 k 个时按规则顺序补齐。
func ApplyOrder(ranked []*core.Item, window int, indices []int, k int, err error) ([]*core.Item, error) {
	if k <= 0 {
		k = core.DefaultK
	}
	k = min(k, len(ranked))
	if window <= 0 || window > len(ranked) {
		window = len(ranked)
	}
	fallback := func(reason error) ([]*core.Item, error) {
		return head(ranked, k), reason
	}
	if err != nil {
		return fallback(err)
	}
	if len(indices) == 0 {
		return fallback(fmt.Errorf("%w: no indices", ErrMalformedResponse))
	}
	for _, i := range indices {
		if i < 0 || i >= window {
			return fallback(fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, window))
		}
	}

	out := make([]*core.Item, 0, k)
	used := make(map[int]bool, k)
	for _, i := range indices {
		if len(out) == k {
			break
		}
		if used[i] {
			continue
		}
		used[i] = true
		out = append(out, ranked[i])
	}
	for i := 0; i < len(ranked) && len(out) < k; i++ {
		if !used[i] {
			used[i] = true
			out = append(out, ranked[i])
		}
	}
	return out, nil
}
