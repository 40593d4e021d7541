// Package store 提供 core.Store 的实现：MemoryStore（单进程）与 RedisStore（多实例）。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var kv core.Store = store.NewMemoryStore()
//	profiles := profile.NewStore(kv)
package store

import "github.com/rushteam/upsell/core"

// ErrNotFound 与 core.ErrStoreNotFound 相同。
var ErrNotFound = core.ErrStoreNotFound
