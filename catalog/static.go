package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/rushteam/upsell/core"
)

// Snapshot 是一次目录读取的完整快照，字段名与租车 API 的响应一致。
type Snapshot struct {
	Deals              []core.Deal              `json:"deals"`
	ProtectionPackages []core.ProtectionPackage `json:"protectionPackages"`
	Addons             []core.AddonGroup        `json:"addons"`
}

// Static 是基于快照的只读目录，忽略 booking id。用于离线排序与测试。
type Static struct {
	snap Snapshot
}

// NewStatic 用快照创建目录。
func NewStatic(s Snapshot) *Static { return &Static{snap: s} }

// LoadSnapshot 从 JSON 文件加载快照。
func LoadSnapshot(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// ParseSnapshot 解析 JSON 快照。
func ParseSnapshot(data []byte) (*Static, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "parse snapshot", err)
	}
	return NewStatic(s), nil
}

func (s *Static) Deals(context.Context, string) ([]core.Deal, error) {
	return s.snap.Deals, nil
}

func (s *Static) Protections(context.Context, string) ([]core.ProtectionPackage, error) {
	return s.snap.ProtectionPackages, nil
}

func (s *Static) Addons(context.Context, string) ([]core.AddonGroup, error) {
	return s.snap.Addons, nil
}
