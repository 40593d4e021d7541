package core

import "github.com/rushteam/upsell/pkg/utils"

// Item 是排序链路中的统一承载结构：deal、分数、标签。
// Labels 用于解释与观测；Score 用于排序决策；Index 是在输入 deals 中的位置。
type Item struct {
	ID     string
	Index  int
	Score  float64
	Deal   *Deal
	Labels map[string]utils.Label
}

func NewItem(index int, deal *Deal) *Item {
	it := &Item{
		Index:  index,
		Deal:   deal,
		Labels: make(map[string]utils.Label),
	}
	if deal != nil {
		it.ID = deal.Vehicle.ID
	}
	return it
}

// ItemsFromDeals 把目录快照包装为 Items，保留输入顺序。
func ItemsFromDeals(deals []Deal) []*Item {
	items := make([]*Item, 0, len(deals))
	for i := range deals {
		items = append(items, NewItem(i, &deals[i]))
	}
	return items
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 获取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}
