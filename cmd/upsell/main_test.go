package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/upsell/config"
	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/store"
)

const snapshot = `{
  "deals": [
    {"vehicle": {"id": "sedan", "brand": "VW", "model": "Passat", "groupType": "SEDAN", "passengersCount": 5, "bagsCount": 3, "transmissionType": "AUTOMATIC", "fuelType": "DIESEL"},
     "pricing": {"displayPrice": {"currency": "EUR", "amount": 50}, "totalPrice": {"currency": "EUR", "amount": 200}},
     "dealInfo": "BOOKED_CATEGORY"},
    {"vehicle": {"id": "suv", "brand": "BMW", "model": "X7", "groupType": "SUV", "passengersCount": 7, "bagsCount": 5, "transmissionType": "AUTOMATIC", "fuelType": "PETROL", "isMoreLuxury": true},
     "pricing": {"displayPrice": {"currency": "EUR", "amount": 70}, "totalPrice": {"currency": "EUR", "amount": 280}}}
  ],
  "protectionPackages": [
    {"id": "basic", "name": "Basic cover", "price": {"displayPrice": {"currency": "EUR", "amount": 10}, "totalPrice": {"currency": "EUR", "amount": 40}}}
  ],
  "addons": []
}`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("UPSELL_STORE_DRIVER", "")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRankCommand(t *testing.T) {
	out, err := run(t, "", "rank", "--catalog", writeSnapshot(t), "--message", "family trip, 6 people", "--log-level", "error")
	require.NoError(t, err)

	var res struct {
		Cars []struct {
			ID           string  `json:"id"`
			UpgradeTotal float64 `json:"upgrade_total"`
		} `json:"cars"`
		Profile core.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Cars, 1)
	assert.Equal(t, "suv", res.Cars[0].ID)
	assert.Equal(t, 80.0, res.Cars[0].UpgradeTotal)
	assert.Equal(t, 6, res.Profile.Passengers)
	assert.Equal(t, core.TripFamily, res.Profile.TripType)
}

func TestRankCommand_RequiresSource(t *testing.T) {
	_, err := run(t, "", "rank", "--message", "hi")
	assert.ErrorContains(t, err, "--catalog or --booking")
}

func TestChatCommand(t *testing.T) {
	stdin := "we are 6 people\n/step protection\nwhat do you suggest?\n/reset\n/quit\n"
	out, err := run(t, stdin, "chat", "--catalog", writeSnapshot(t), "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "step vehicle")
	assert.Contains(t, out, "Here are the best options for your trip:")
	assert.Contains(t, out, "step protection")
	assert.Contains(t, out, "Basic cover")
	assert.Contains(t, out, "profile cleared")
}

func TestNewStore(t *testing.T) {
	kv, err := newStore(context.Background(), config.StoreConfig{Driver: config.StoreMemory})
	require.NoError(t, err)
	_, ok := kv.(*store.MemoryStore)
	assert.True(t, ok)
	require.NoError(t, kv.Close())

	_, err = newStore(context.Background(), config.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestNewRanker_PipelineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  nodes:\n    - type: filter.hard\n    - type: rank.rule\n    - type: rerank.topn\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Ranking.PipelineFile = path
	h, err := newRanker(cfg, nil, store.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, h)

	cfg.Ranking.PipelineFile = ""
	cfg.Ranking.Filters = []string{"deal.total +"}
	_, err = newRanker(cfg, nil, store.NewMemoryStore(), zerolog.Nop())
	assert.Error(t, err)
}
