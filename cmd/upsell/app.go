package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/rushteam/upsell/assistant"
	"github.com/rushteam/upsell/config"
	_ "github.com/rushteam/upsell/config/builders"
	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/filter"
	"github.com/rushteam/upsell/llm"
	"github.com/rushteam/upsell/pkg/logx"
	"github.com/rushteam/upsell/profile"
	"github.com/rushteam/upsell/ranker"
	"github.com/rushteam/upsell/rerank"
	"github.com/rushteam/upsell/store"
)

// app 持有一次命令执行所需的全部组件。
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  core.Store
	engine *assistant.Engine
}

func newApp(ctx context.Context, cfg *config.Config, cat core.Catalog, logOut io.Writer) (*app, error) {
	logger := logx.New(logx.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logOut})

	kv, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	var completer llm.Completer
	if cfg.LLM.APIKey != "" {
		completer = llm.NewBreaker(llm.NewOpenAIClient(cfg.OpenAI()), cfg.BreakerSettings(), logger)
	} else {
		logger.Info().Msg("no llm api key configured, running rule-only")
	}

	hybrid, err := newRanker(cfg, completer, kv, logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	opts := []assistant.Option{
		assistant.WithLogger(logger),
		assistant.WithK(cfg.Ranking.K),
		assistant.WithLLMRanking(cfg.Ranking.UseLLM && completer != nil),
		assistant.WithChatTemperature(cfg.LLM.ChatTemperature),
	}
	if completer != nil {
		opts = append(opts, assistant.WithChat(completer))
	}

	profiles := profile.NewStore(kv, profile.WithPrefix(cfg.Store.Prefix), profile.WithTTL(cfg.Store.TTL))
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  kv,
		engine: assistant.New(profiles, cat, hybrid, opts...),
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

func newStore(ctx context.Context, sc config.StoreConfig) (core.Store, error) {
	switch sc.Driver {
	case config.StoreRedis:
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.StoreMemory, "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}

// newRanker 优先从 pipeline_file 构建链路，否则用默认链路加配置中的 CEL 过滤条件。
func newRanker(cfg *config.Config, completer llm.Completer, kv core.Store, logger zerolog.Logger) (*ranker.Hybrid, error) {
	var reranker rerank.Reranker
	if completer != nil {
		r := rerank.NewLLMReranker(completer)
		r.Temperature = cfg.LLM.RerankTemperature
		reranker = r
	}

	rc := cfg.Ranking
	if rc.PipelineFile != "" {
		p, err := config.BuildPipeline(rc.PipelineFile, config.Deps{Reranker: reranker, Store: kv, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("build pipeline %s: %w", rc.PipelineFile, err)
		}
		return ranker.NewFromPipeline(p, logger), nil
	}

	filters := make([]filter.Filter, 0, len(rc.Filters))
	for _, expr := range rc.Filters {
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("ranking filter: %w", err)
		}
		filters = append(filters, f)
	}
	return ranker.New(reranker,
		ranker.WithLogger(logger),
		ranker.WithFilters(filters...),
		ranker.WithThresholds(rc.DirectLLMMax, rc.WindowMax, rc.WindowSize),
		ranker.WithRerankTimeout(rc.RerankTimeout),
	), nil
}
