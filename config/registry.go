package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/pipeline"
	"github.com/rushteam/upsell/rerank"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/upsell/config/builders"
// 以触发内置 Node（filter.hard、rank.rule、rerank.hybrid 等）的 init 注册。

// Deps 是构建 Node 时可注入的运行期依赖，YAML 中无法表达的部分由此传入。
type Deps struct {
	Reranker rerank.Reranker // 为空时 rerank.hybrid 只做规则排序
	Store    core.Store      // filter.blocklist 的动态名单
	Logger   zerolog.Logger
}

// Builder 根据 config 与依赖构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type Builder func(cfg map[string]any, deps Deps) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]Builder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，例如：func init() { config.Register("rank.rule", BuildRuleNode) }
func Register(typeName string, builder Builder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NewFactory 返回绑定了 deps 的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func NewFactory(deps Deps) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		b := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return b(cfg, deps)
		})
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return fmt.Errorf("pipeline %q has no nodes", cfg.Pipeline.Name)
	}
	supported := SupportedTypes()
	for _, nc := range cfg.Pipeline.Nodes {
		defaultBuildersMu.RLock()
		_, ok := defaultBuilders[nc.Type]
		defaultBuildersMu.RUnlock()
		if !ok {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}

// BuildPipeline 从 YAML/JSON 文件构建 Pipeline：加载、校验类型、按 deps 构建。
func BuildPipeline(path string, deps Deps) (*pipeline.Pipeline, error) {
	pc, err := pipeline.Load(path)
	if err != nil {
		return nil, err
	}
	if err := ValidatePipelineConfig(pc); err != nil {
		return nil, err
	}
	p, err := pc.BuildPipeline(NewFactory(deps))
	if err != nil {
		return nil, err
	}
	p.Logger = deps.Logger
	return p, nil
}
