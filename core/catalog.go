package core

import "context"

// Catalog 是外部租车目录服务的领域接口。
// 每个方法都是一次同步读取，返回的快照只在一次排序调用内有效；core 不做缓存。
type Catalog interface {
	Deals(ctx context.Context, bookingID string) ([]Deal, error)
	Protections(ctx context.Context, bookingID string) ([]ProtectionPackage, error)
	Addons(ctx context.Context, bookingID string) ([]AddonGroup, error)
}
