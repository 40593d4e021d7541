package filter

import (
	"context"
	"slices"

	"github.com/goccy/go-json"

	"github.com/rushteam/upsell/core"
)

// BlocklistFilter 剔除被屏蔽的车辆（例如临时下架），按 vehicle id 匹配。
type BlocklistFilter struct {
	// VehicleIDs 是内存中的屏蔽列表
	VehicleIDs []string

	// Store 用于从存储中读取屏蔽列表（可选），值为 JSON 字符串数组
	Store core.Store

	// Key 是 Store 中的屏蔽列表 key（可选）
	Key string
}

// NewBlocklistFilter 创建一个屏蔽列表过滤器。
func NewBlocklistFilter(ids []string, store core.Store, key string) *BlocklistFilter {
	return &BlocklistFilter{
		VehicleIDs: ids,
		Store:      store,
		Key:        key,
	}
}

func (f *BlocklistFilter) Name() string {
	return "filter.blocklist"
}

func (f *BlocklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	if slices.Contains(f.VehicleIDs, item.ID) {
		return true, nil
	}

	// 从 Store 检查；key 不存在视为空列表
	if f.Store != nil && f.Key != "" {
		ids, err := f.load(ctx)
		if err != nil {
			return false, err
		}
		if slices.Contains(ids, item.ID) {
			return true, nil
		}
	}

	return false, nil
}

func (f *BlocklistFilter) load(ctx context.Context) ([]string, error) {
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
