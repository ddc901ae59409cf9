package twitter

import (
	"fmt"
	"io"
	"log/slog"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Doer is the HTTP exchange used for API and website requests.
// *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrder(method, urlStr string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client queries the X API for a profile's followers.
// A Client holds no state between runs beyond its rate-limit bookkeeping.
type Client struct {
	doer    Doer
	auth    Authorizer
	version APIVersion
	policy  RateLimitPolicy
	cfg     ClientConfig
}

// NewClient creates a fully-wired follower client. It refuses to build a client
// around an incomplete credential set.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	if cfg.Auth == nil {
		return nil, fmt.Errorf("%w: no credentials configured", ErrMissingCredentials)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	doer := cfg.Transport
	if doer == nil {
		opts := []stealth.ClientOption{
			stealth.WithHeaderOrder(apiHeaderOrder),
		}
		if cfg.Proxy != "" {
			opts = append(opts, stealth.WithProxy(cfg.Proxy))
			slog.Debug("using proxy", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("stealth client: %w", err)
		}
		doer = bc
	}

	policy := cfg.RateLimitPolicy
	if policy == nil {
		policy = NewHeaderPolicy(cfg.RateLimit, cfg.PageDelay, cfg.MaxRateLimitWait)
	}

	if pe, ok := cfg.Emails.(*PageExtractor); ok && pe.Transport == nil {
		withDoer := *pe
		withDoer.Transport = doer
		if withDoer.UserAgent == "" {
			withDoer.UserAgent = cfg.UserAgent
		}
		cfg.Emails = &withDoer
	}

	return &Client{
		doer:    doer,
		auth:    cfg.Auth,
		version: cfg.Auth.APIVersion(),
		policy:  policy,
		cfg:     cfg,
	}, nil
}

// APIVersion reports which endpoint family the client talks to.
func (c *Client) APIVersion() APIVersion {
	return c.version
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}

// progress calls the progress hook if configured.
func (c *Client) progress(stage Stage, percent int) {
	if c.cfg.Progress != nil {
		c.cfg.Progress(stage, percent)
	}
}
