package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultTimeout     = 3 * time.Minute
	defaultRatePerMin  = 50
	defaultBaseBackoff = 500 * time.Millisecond
)

// Config for the OpenAI client.
type Config struct {
	APIKey             string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL            string        // default https://api.openai.com/v1
	Model              string        // e.g., "gpt-4o-mini"
	Temperature        float32       // 0..2
	Timeout            time.Duration // per attempt; documents are large so this is minutes
	RateLimitPerMinute int
	MaxRetries         int // retries after the first attempt on 429/5xx and transient transport errors
	BaseBackoff        time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = defaultRatePerMin
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	perSecond := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(perSecond, 1),
		log:        logger,
	}
}

// Available reports whether the client has credentials to call the API.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}
