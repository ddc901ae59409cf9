package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// doGET executes one signed GET request. Nothing is retried: a non-200
// response becomes an *APIError and a transport failure is wrapped as is.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	headers := apiHeaders(c.cfg.UserAgent)
	if err := c.auth.Authorize("GET", url, headers); err != nil {
		return nil, nil, fmt.Errorf("%s: authorize: %w", endpoint, err)
	}

	body, respHdrs, status, err := c.doer.DoWithHeaderOrder("GET", url, headers, nil, apiHeaderOrder)
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		slog.Warn("request failed", slog.String("endpoint", endpoint), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	c.policy.Observe(endpoint, status, respHdrs)

	switch {
	case status == 429:
		c.recordAPICall(endpoint, false, true)
		apiErr := newAPIError(endpoint, status, body, respHdrs)
		slog.Warn("rate limited",
			slog.String("endpoint", endpoint),
			slog.Time("reset", apiErr.ResetAt))
		return nil, respHdrs, apiErr

	case status != 200:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("non-200 response",
			slog.String("endpoint", endpoint),
			slog.Int("status", status),
			slog.String("body", truncateBytes(body, 500)))
		return nil, respHdrs, newAPIError(endpoint, status, body, respHdrs)
	}

	c.recordAPICall(endpoint, true, false)
	return body, respHdrs, nil
}

// truncateBytes cuts b to at most n bytes on a rune boundary.
func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]) + "..."
}
