package twitter

import (
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// ClientConfig holds all configuration for the follower client.
type ClientConfig struct {
	// Auth signs every API request. Its APIVersion selects the endpoint family.
	Auth Authorizer

	// BaseURL overrides the API host. Default: https://api.twitter.com
	BaseURL string

	// Proxy is an optional proxy URL for the default transport.
	Proxy string

	// UserAgent is sent with API and website requests.
	UserAgent string

	// MaxResults caps the number of followers returned when the caller passes 0.
	MaxResults int

	// MaxPages is the hard ceiling on follower page requests per run.
	MaxPages int

	// PageDelay is the minimum interval between two follower page requests.
	PageDelay time.Duration

	// MaxRateLimitWait bounds how long a run will block waiting for a
	// provider-declared rate-limit reset before giving up.
	MaxRateLimitWait time.Duration

	// RateLimit configures the per-endpoint limiter behind the default policy.
	RateLimit ratelimit.Config

	// RateLimitPolicy overrides the default header-aware policy.
	RateLimitPolicy RateLimitPolicy

	// Emails derives email addresses from follower websites.
	// Default: SimulatedExtractor.
	Emails EmailExtractor

	// Transport performs the HTTP exchange. Default: a go-stealth browser client.
	Transport Doer

	// MetricsHook is called on each API request for external metrics collection.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)

	// Progress is called as an extraction run moves through its stages.
	Progress func(stage Stage, percent int)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 100
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 3
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = 1 * time.Second
	}
	if cfg.MaxRateLimitWait == 0 {
		cfg.MaxRateLimitWait = 15 * time.Minute
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.Emails == nil {
		cfg.Emails = &SimulatedExtractor{}
	}
}
