// Package config 加载服务配置，并维护 pipeline Node 类型注册表。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/upsell/catalog"
	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/llm"
	"github.com/rushteam/upsell/rerank"
)

// 存储驱动
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config 是服务的全部配置。
type Config struct {
	Log     LogConfig     `yaml:"log"`
	LLM     LLMConfig     `yaml:"llm"`
	Breaker BreakerConfig `yaml:"breaker"`
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Ranking RankingConfig `yaml:"ranking"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json / console
}

// LLMConfig 是 OpenAI 兼容服务配置。APIKey 为空时不启用模型。
type LLMConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	ChatTemperature   float32       `yaml:"chat_temperature"`
	RerankTemperature float32       `yaml:"rerank_temperature"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
}

type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

type CatalogConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Driver string        `yaml:"driver"` // memory / redis
	TTL    time.Duration `yaml:"ttl"`
	Prefix string        `yaml:"prefix"`
	Redis  RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RankingConfig 控制排序链路。PipelineFile 非空时从 YAML 构建链路，阈值与 Filters 不再生效。
type RankingConfig struct {
	K             int           `yaml:"k"`
	UseLLM        bool          `yaml:"use_llm"`
	DirectLLMMax  int           `yaml:"direct_llm_max"`
	WindowMax     int           `yaml:"window_max"`
	WindowSize    int           `yaml:"window_size"`
	RerankTimeout time.Duration `yaml:"rerank_timeout"`
	Filters       []string      `yaml:"filters"` // CEL 保留条件
	PipelineFile  string        `yaml:"pipeline_file"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	bs := llm.DefaultBreakerSettings()
	return &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		LLM: LLMConfig{
			Model:             llm.DefaultModel,
			ChatTemperature:   0.4,
			RerankTemperature: rerank.DefaultTemperature,
			Timeout:           30 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRequests:         bs.MaxRequests,
			Interval:            bs.Interval,
			Timeout:             bs.Timeout,
			ConsecutiveFailures: bs.ConsecutiveFailures,
		},
		Catalog: CatalogConfig{BaseURL: catalog.DefaultBaseURL, Timeout: 5 * time.Second},
		Store:   StoreConfig{Driver: StoreMemory, TTL: 24 * time.Hour, Prefix: "upsell:profile:"},
		Ranking: RankingConfig{
			K:             core.DefaultK,
			DirectLLMMax:  rerank.DefaultDirectMax,
			WindowMax:     rerank.DefaultWindowMax,
			WindowSize:    rerank.DefaultWindowSize,
			RerankTimeout: rerank.DefaultTimeout,
		},
	}
}

// Load 读取配置：默认值 -> YAML 文件（path 为空时跳过）-> .env -> 环境变量。
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "validate config", err)
	}
	return cfg, nil
}

// applyEnv 用环境变量覆盖配置，getenv 便于测试替换。
func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set("OPENAI_API_KEY", &cfg.LLM.APIKey)
	set("OPENAI_BASE_URL", &cfg.LLM.BaseURL)
	set("UPSELL_LLM_MODEL", &cfg.LLM.Model)
	set("CATALOG_BASE_URL", &cfg.Catalog.BaseURL)
	set("REDIS_ADDR", &cfg.Store.Redis.Addr)
	set("UPSELL_STORE_DRIVER", &cfg.Store.Driver)
	set("UPSELL_LOG_LEVEL", &cfg.Log.Level)
	if v := getenv("UPSELL_USE_LLM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Ranking.UseLLM = b
		}
	}
}

// Validate 校验配置。
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	r := c.Ranking
	if r.K < 1 {
		errs = append(errs, fmt.Errorf("ranking.k must be >= 1, got %d", r.K))
	}
	if r.DirectLLMMax > r.WindowMax {
		errs = append(errs, fmt.Errorf("ranking.direct_llm_max (%d) must not exceed window_max (%d)", r.DirectLLMMax, r.WindowMax))
	}
	if r.WindowSize < 1 {
		errs = append(errs, fmt.Errorf("ranking.window_size must be >= 1, got %d", r.WindowSize))
	}
	return errors.Join(errs...)
}

// BreakerSettings 转换为 llm 熔断参数。
func (c *Config) BreakerSettings() llm.BreakerSettings {
	return llm.BreakerSettings{
		Name:                "llm",
		MaxRequests:         c.Breaker.MaxRequests,
		Interval:            c.Breaker.Interval,
		Timeout:             c.Breaker.Timeout,
		ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
	}
}

// OpenAI 转换为 llm 客户端配置。
func (c *Config) OpenAI() llm.OpenAIConfig {
	return llm.OpenAIConfig{
		APIKey:    c.LLM.APIKey,
		BaseURL:   c.LLM.BaseURL,
		Model:     c.LLM.Model,
		MaxTokens: c.LLM.MaxTokens,
		Timeout:   c.LLM.Timeout,
	}
}
