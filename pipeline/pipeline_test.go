package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/upsell/core"
)

func dropFirst(name string) Node {
	return NodeFunc{
		NodeName: name,
		NodeKind: KindFilter,
		Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
			if len(items) == 0 {
				return items, nil
			}
			return items[1:], nil
		},
	}
}

func TestPipeline_RunInOrder(t *testing.T) {
	deals := []core.Deal{{}, {}, {}}
	p := &Pipeline{Nodes: []Node{dropFirst("a"), dropFirst("b")}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, core.ItemsFromDeals(deals))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Index)
}

func TestPipeline_NodeErrorStops(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := &Pipeline{Nodes: []Node{
		NodeFunc{NodeName: "fail", Fn: func(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
			return nil, boom
		}},
		NodeFunc{NodeName: "after", Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
			called = true
			return items, nil
		}},
	}}

	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "node fail")
	assert.False(t, called)
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{dropFirst("a")}}

	_, err := p.Run(ctx, &core.RecommendContext{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfig_BuildPipeline(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: upsell
  nodes:
    - type: drop
    - type: drop
      config:
        note: second
`))
	require.NoError(t, err)
	require.Len(t, cfg.Pipeline.Nodes, 2)
	assert.Equal(t, "upsell", cfg.Pipeline.Name)

	f := NewNodeFactory()
	var seen []map[string]any
	f.Register("drop", func(c map[string]any) (Node, error) {
		seen = append(seen, c)
		return dropFirst("drop"), nil
	})

	p, err := cfg.BuildPipeline(f)
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2)
	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.Equal(t, "second", seen[1]["note"])
}

func TestNodeFactory_UnknownType(t *testing.T) {
	f := NewNodeFactory()
	f.Register("rank.rule", func(map[string]any) (Node, error) { return dropFirst("rank.rule"), nil })
	_, err := f.Build("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node type")
	assert.Contains(t, err.Error(), "rank.rule")
	assert.Equal(t, []string{"rank.rule"}, f.Types())
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := ParseJSON([]byte(`{"pipeline":{"name":"p","nodes":[{"type":"rank.rule"},{"type":" "}]}}`))
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "node #1 has no type")

	assert.ErrorContains(t, (&Config{}).Validate(), "has no nodes")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	cfg, err := Load(write("p.yml", "pipeline:\n  nodes:\n    - type: rank.rule\n"))
	require.NoError(t, err)
	assert.Equal(t, "rank.rule", cfg.Pipeline.Nodes[0].Type)

	cfg, err = Load(write("p.json", `{"pipeline":{"nodes":[{"type":"rerank.topn","config":{"n":2}}]}}`))
	require.NoError(t, err)
	assert.EqualValues(t, 2, cfg.Pipeline.Nodes[0].Config["n"])

	_, err = Load(write("p.toml", ""))
	assert.ErrorContains(t, err, "unsupported extension")
	_, err = Load(write("empty.yaml", "pipeline: {}\n"))
	assert.ErrorContains(t, err, "has no nodes")
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
