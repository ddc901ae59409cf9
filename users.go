package twitter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"
)

// ResolveUserID looks up the numeric account id for a handle with exactly one
// authenticated request.
func (c *Client) ResolveUserID(ctx context.Context, handle string) (string, error) {
	if !validHandle(handle) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}

	body, _, err := c.doGET(ctx, endpointUserLookup, userLookupURL(c.cfg.BaseURL, c.version, handle))
	if err != nil {
		return "", err
	}
	id, err := parseUserID(body, c.version)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", endpointUserLookup, handle, err)
	}
	slog.Debug("resolved handle", slog.String("handle", handle), slog.String("user_id", id))
	return id, nil
}

// FetchFollowers pages through a user's followers until the cursor runs out,
// MaxPages requests were made, or maxResults entries were collected. The
// result keeps provider order and never exceeds maxResults. When a page fails,
// the entries gathered so far are returned together with the error.
func (c *Client) FetchFollowers(ctx context.Context, userID string, maxResults int) ([]gjson.Result, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	var followers []gjson.Result
	cursor := startCursor(c.version)

	for page := 0; page < c.cfg.MaxPages && len(followers) < maxResults; page++ {
		if page > 0 {
			if err := c.policy.Wait(ctx, endpointFollowers); err != nil {
				return followers, fmt.Errorf("%s page %d: %w", endpointFollowers, page+1, err)
			}
		}

		url := followersURL(c.cfg.BaseURL, c.version, userID, cursor.Value, maxResults-len(followers))
		body, _, err := c.doGET(ctx, endpointFollowers, url)
		if err != nil {
			return followers, fmt.Errorf("%s page %d: %w", endpointFollowers, page+1, err)
		}

		batch, next, err := parseFollowerPage(body, c.version)
		if err != nil {
			return followers, fmt.Errorf("parse %s page %d: %w", endpointFollowers, page+1, err)
		}
		followers = append(followers, batch...)

		slog.Debug("follower page fetched",
			slog.String("user_id", userID),
			slog.Int("page", page+1),
			slog.Int("batch", len(batch)),
			slog.Int("total", len(followers)))

		if next.Done {
			break
		}
		cursor = next
	}

	if len(followers) > maxResults {
		followers = followers[:maxResults]
	}
	return followers, nil
}
