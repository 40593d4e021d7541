// Package profile 管理 session/booking id -> Profile 的累积画像。
//
// 画像按 key 隔离：不同会话并发读写互不影响；同一会话的并发轮次不保证原子性，
// 调用方应按会话串行（同一 session 同一时刻只有一轮对话在处理）。
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rushteam/upsell/core"
)

const defaultPrefix = "upsell:profile:"

// Store 是基于 core.Store 的画像存储，值以 JSON 编码。
type Store struct {
	kv     core.Store
	prefix string
	ttl    int // 秒，0 表示不过期
}

type Option func(*Store)

// WithPrefix 设置 key 前缀。
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL 设置画像过期时间（会话生命周期）。
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = int(ttl / time.Second)
		}
	}
}

func NewStore(kv core.Store, opts ...Option) *Store {
	s := &Store{kv: kv, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string { return s.prefix + id }

// Load 读取会话画像；首次引用时以 referencePrice 创建并写入。
// 已存在但尚未记录原始价格（例如先进入保障步骤）时补齐 ReferencePrice。
func (s *Store) Load(ctx context.Context, id string, referencePrice float64) (*core.Profile, error) {
	if id == "" {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "profile: empty session id")
	}

	raw, err := s.kv.Get(ctx, s.key(id))
	switch {
	case errors.Is(err, core.ErrStoreNotFound):
		p := core.NewProfile(referencePrice)
		if err := s.Save(ctx, id, p); err != nil {
			return nil, err
		}
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("profile: load %s: %w", id, err)
	}

	var p core.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profile: decode %s: %w", id, err)
	}
	if p.ReferencePrice == 0 && referencePrice > 0 {
		p.ReferencePrice = referencePrice
	}
	return &p, nil
}

// Save 写入会话画像。
func (s *Store) Save(ctx context.Context, id string, p *core.Profile) error {
	if p == nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "profile: nil profile")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode %s: %w", id, err)
	}
	if err := s.kv.Set(ctx, s.key(id), raw, s.ttl); err != nil {
		return fmt.Errorf("profile: save %s: %w", id, err)
	}
	return nil
}

// Evict 删除会话画像。
func (s *Store) Evict(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, s.key(id)); err != nil {
		return fmt.Errorf("profile: evict %s: %w", id, err)
	}
	return nil
}
