package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 描述一条排序链路，例如：
//
//	pipeline:
//	  name: upsell
//	  nodes:
//	    - type: filter.hard
//	    - type: rank.rule
//	    - type: rerank.hybrid
//	      config: {window_size: 10, timeout: 8s}
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

// NodeConfig 是单个 Node 的类型与参数，参数只由对应的 NodeBuilder 解释。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config" json:"config"`
}

// Load 按扩展名（.yaml / .yml / .json）读取链路配置并校验。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	case ".json":
		cfg, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("pipeline config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config %s: %w", path, err)
	}
	return cfg, nil
}

func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &cfg, nil
}

func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &cfg, nil
}

// Validate 要求至少一个 Node 且每个 Node 都声明了类型；节点类型是否已注册由 NodeFactory 判断。
func (c *Config) Validate() error {
	if len(c.Pipeline.Nodes) == 0 {
		return fmt.Errorf("pipeline %q has no nodes", c.Pipeline.Name)
	}
	var errs []error
	for i, nc := range c.Pipeline.Nodes {
		if strings.TrimSpace(nc.Type) == "" {
			errs = append(errs, fmt.Errorf("node #%d has no type", i))
		}
	}
	return errors.Join(errs...)
}

// BuildPipeline 按声明顺序构建 Node，任一 Node 构建失败即返回。
func (c *Config) BuildPipeline(factory *NodeFactory) (*Pipeline, error) {
	nodes := make([]Node, 0, len(c.Pipeline.Nodes))
	for i, nc := range c.Pipeline.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q node #%d (%s): %w", c.Pipeline.Name, i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return &Pipeline{Nodes: nodes}, nil
}

// NodeBuilder 用 YAML/JSON 中的 config 段构建 Node。
type NodeBuilder func(map[string]any) (Node, error)

// NodeFactory 把节点类型名（filter.hard、rank.rule、rerank.hybrid ...）映射到 NodeBuilder。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

// Register 注册或覆盖一个节点类型。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Types 返回已注册的节点类型（排序）。
func (f *NodeFactory) Types() []string {
	out := make([]string, 0, len(f.builders))
	for t := range f.builders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Build 构建一个 Node；config 为空时传入空 map，NodeBuilder 无需判空。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q (registered: %s)", nodeType, strings.Join(f.Types(), ", "))
	}
	if config == nil {
		config = map[string]any{}
	}
	return builder(config)
}
