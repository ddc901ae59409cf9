package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// RateLimitPolicy decides how long to pause between follower page requests.
type RateLimitPolicy interface {
	// Wait blocks until endpoint may be called again or ctx is done.
	Wait(ctx context.Context, endpoint string) error
	// Observe records the status and headers of a response from endpoint.
	Observe(endpoint string, status int, headers map[string]string)
}

// FixedDelay pauses for a constant duration regardless of response headers.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context, _ string) error {
	return sleepCtx(ctx, time.Duration(d))
}

func (FixedDelay) Observe(string, int, map[string]string) {}

// HeaderPolicy honours the provider's x-rate-limit-remaining and
// x-rate-limit-reset headers and keeps a minimum interval between requests to
// the same endpoint.
type HeaderPolicy struct {
	limiter  *ratelimit.Limiter
	interval time.Duration
	maxWait  time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewHeaderPolicy creates a policy over a go-stealth limiter. A reset further
// away than maxWait fails fast with ErrRateLimited instead of blocking.
func NewHeaderPolicy(cfg ratelimit.Config, interval, maxWait time.Duration) *HeaderPolicy {
	return &HeaderPolicy{
		limiter:  ratelimit.NewLimiter(cfg),
		interval: interval,
		maxWait:  maxWait,
		last:     make(map[string]time.Time),
	}
}

func (p *HeaderPolicy) Wait(ctx context.Context, endpoint string) error {
	if p.limiter.IsRateLimited(endpoint) || !p.limiter.Allow(endpoint) {
		wait := time.Until(p.limiter.AvailableAt(endpoint))
		if wait > p.maxWait {
			return fmt.Errorf("%w: %s available in %s", ErrRateLimited, endpoint, wait.Round(time.Second))
		}
		slog.Info("waiting for rate limit reset", slog.String("endpoint", endpoint), slog.Duration("wait", wait))
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}

	p.mu.Lock()
	next := p.last[endpoint].Add(p.interval)
	p.mu.Unlock()
	if err := sleepCtx(ctx, time.Until(next)); err != nil {
		return err
	}

	p.mu.Lock()
	p.last[endpoint] = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *HeaderPolicy) Observe(endpoint string, status int, headers map[string]string) {
	p.mu.Lock()
	p.last[endpoint] = time.Now()
	p.mu.Unlock()

	remaining, err := strconv.Atoi(headerValue(headers, "x-rate-limit-remaining"))
	exhausted := err == nil && remaining <= 0
	if status != 429 && !exhausted {
		return
	}
	until := parseRateLimitReset(headerValue(headers, "x-rate-limit-reset"))
	p.limiter.MarkRateLimited(endpoint, until)
	slog.Debug("endpoint rate limited", slog.String("endpoint", endpoint), slog.Time("until", until))
}

// sleepCtx sleeps for d or until ctx is done. Non-positive d returns at once.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
