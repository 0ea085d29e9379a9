package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before mapping them onto config keys.
const EnvPrefix = "RFP_"

const (
	maxConfigFileSize = 1024 * 1024
	defaultMaxRetries = 2
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig      `koanf:"llm"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Store    StoreConfig    `koanf:"store"`
	Log      LogConfig      `koanf:"log"`
	Batch    BatchConfig    `koanf:"batch"`
}

// LLMConfig holds model-client configuration
type LLMConfig struct {
	Provider           string        `koanf:"provider"`
	Model              string        `koanf:"model"`
	APIKey             string        `koanf:"api_key"`
	BaseURL            string        `koanf:"base_url"`
	Temperature        float32       `koanf:"temperature"`
	Timeout            time.Duration `koanf:"timeout"`
	MaxInputChars      int           `koanf:"max_input_chars"`
	RateLimitPerMinute float64       `koanf:"rate_limit_per_minute"`
	MaxRetries         int           `koanf:"max_retries"`
}

// PipelineConfig holds the tuned heuristic constants.
type PipelineConfig struct {
	GroundingThreshold  float64 `koanf:"grounding_threshold"`
	GroundingTerms      int     `koanf:"grounding_terms"`
	CompletenessPenalty float64 `koanf:"completeness_penalty"`
	CategoryCap         int     `koanf:"category_cap"`
	TitleRepeatCap      int     `koanf:"title_repeat_cap"`
	ScopeMaxItems       int     `koanf:"scope_max_items"`
	ScopeMinWords       int     `koanf:"scope_min_words"`
	ExtractionWeight    float64 `koanf:"extraction_weight"`
	VerificationWeight  float64 `koanf:"verification_weight"`
	CompletenessWeight  float64 `koanf:"completeness_weight"`
}

// StoreConfig holds run-journal configuration. An empty DSN disables the journal.
type StoreConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	DialTimeout     time.Duration `koanf:"dial_timeout"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// BatchConfig holds batch-runner configuration
type BatchConfig struct {
	Workers         int           `koanf:"workers"`
	DocumentTimeout time.Duration `koanf:"document_timeout"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	cfg := &Config{LLM: LLMConfig{MaxRetries: defaultMaxRetries}}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from an optional YAML file, then environment variables.
//
// Precedence (highest first): RFP_* environment variables, the YAML file, defaults.
// Environment keys split on the first underscore after the prefix:
//
//	RFP_LLM_MODEL                    -> llm.model
//	RFP_PIPELINE_GROUNDING_THRESHOLD -> pipeline.grounding_threshold
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, "stat config file", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("config file larger than %d bytes", maxConfigFileSize), ErrInvalidInput)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, NewAppError(CodeConfig, "parse config file "+path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, NewAppError(CodeConfig, "load environment", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, NewAppError(CodeConfig, "unmarshal config", err)
	}
	// zero is a valid setting (no retries), so only an absent key takes the default
	if !k.Exists("llm.max_retries") {
		cfg.LLM.MaxRetries = defaultMaxRetries
	}

	// OPENAI_API_KEY is the conventional variable; honour it when nothing else is set.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(c *Config) {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 3 * time.Minute
	}
	if c.LLM.MaxInputChars <= 0 {
		c.LLM.MaxInputChars = 100_000
	}
	if c.LLM.RateLimitPerMinute <= 0 {
		c.LLM.RateLimitPerMinute = 50
	}

	p := &c.Pipeline
	if p.GroundingThreshold <= 0 {
		p.GroundingThreshold = 0.5
	}
	if p.GroundingTerms <= 0 {
		p.GroundingTerms = 20
	}
	if p.CompletenessPenalty <= 0 {
		p.CompletenessPenalty = 0.12
	}
	if p.CategoryCap <= 0 {
		p.CategoryCap = 8
	}
	if p.TitleRepeatCap <= 0 {
		p.TitleRepeatCap = 3
	}
	if p.ScopeMaxItems <= 0 {
		p.ScopeMaxItems = 12
	}
	if p.ScopeMinWords <= 0 {
		p.ScopeMinWords = 3
	}
	if p.ExtractionWeight == 0 && p.VerificationWeight == 0 && p.CompletenessWeight == 0 {
		p.ExtractionWeight, p.VerificationWeight, p.CompletenessWeight = 0.55, 0.25, 0.20
	}

	if c.Store.MaxConns <= 0 {
		c.Store.MaxConns = 10
	}
	if c.Store.MinConns <= 0 {
		c.Store.MinConns = 1
	}
	if c.Store.MaxConnLifetime <= 0 {
		c.Store.MaxConnLifetime = 30 * time.Minute
	}
	if c.Store.DialTimeout <= 0 {
		c.Store.DialTimeout = 3 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 4
	}
	if c.Batch.DocumentTimeout <= 0 {
		c.Batch.DocumentTimeout = 5 * time.Minute
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("pipeline.grounding_threshold", c.Pipeline.GroundingThreshold, UnitInterval)
	v.Field("pipeline.completeness_penalty", c.Pipeline.CompletenessPenalty, UnitInterval)
	v.Field("pipeline.extraction_weight", c.Pipeline.ExtractionWeight, UnitInterval)
	v.Field("pipeline.verification_weight", c.Pipeline.VerificationWeight, UnitInterval)
	v.Field("pipeline.completeness_weight", c.Pipeline.CompletenessWeight, UnitInterval)
	v.Field("llm.model", c.LLM.Model, Required, MaxLength(128))
	v.Field("llm.max_retries", c.LLM.MaxRetries, NonNegative)
	if err := v.Err(); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "none":
	default:
		return NewAppError(CodeConfig, "unknown llm.provider "+c.LLM.Provider, ErrInvalidInput)
	}
	return nil
}

// ModelEnabled reports whether the model-assisted extractor can be used.
func (c *Config) ModelEnabled() bool {
	return c.LLM.APIKey != "" && !strings.EqualFold(c.LLM.Provider, "none")
}
