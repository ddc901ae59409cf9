package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Extract runs one full extraction: handle from URL, account id, follower
// pages, then shaping with email derivation. A pagination failure after at
// least one follower was fetched is not fatal: the partial records are
// returned and Result.PageErr is set.
func (c *Client) Extract(ctx context.Context, profileURL string, maxResults int) (*Result, error) {
	handle, ok := ExtractHandle(strings.TrimSpace(profileURL))
	if !ok {
		return nil, fmt.Errorf("%w: %q (use https://x.com/username or https://twitter.com/username)", ErrInvalidProfileURL, profileURL)
	}

	slog.Info("extraction started",
		slog.String("handle", handle),
		slog.String("api", c.version.String()),
		slog.Int("max_results", maxResults))

	c.progress(StageResolve, 0)
	userID, err := c.ResolveUserID(ctx, handle)
	if err != nil {
		return nil, err
	}
	c.progress(StageResolve, 25)

	raws, pageErr := c.FetchFollowers(ctx, userID, maxResults)
	c.progress(StageFetch, 50)
	if len(raws) == 0 {
		if pageErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoFollowers, pageErr)
		}
		return nil, ErrNoFollowers
	}
	if pageErr != nil {
		slog.Warn("pagination stopped early, keeping partial results",
			slog.String("handle", handle),
			slog.Int("fetched", len(raws)),
			slog.Any("error", pageErr))
	}

	records := c.shapeAll(ctx, raws)
	c.progress(StageProcess, 90)

	res := &Result{
		Handle:    handle,
		UserID:    userID,
		Records:   records,
		Summary:   Summarize(records),
		FetchedAt: time.Now(),
		PageErr:   pageErr,
	}
	c.progress(StageDone, 100)

	slog.Info("extraction complete",
		slog.String("handle", handle),
		slog.Int("followers", res.Summary.Total),
		slog.Int("with_website", res.Summary.WithWebsite),
		slog.Int("with_email", res.Summary.WithEmail))
	return res, nil
}

// ShapeFollowers shapes raws in order and derives emails for followers that
// declared a website. A nil emails derives none.
func ShapeFollowers(ctx context.Context, raws []gjson.Result, emails EmailExtractor) []FollowerRecord {
	return shapeFollowers(ctx, raws, emails, nil)
}

func (c *Client) shapeAll(ctx context.Context, raws []gjson.Result) []FollowerRecord {
	return shapeFollowers(ctx, raws, c.cfg.Emails, func(i int) {
		if i%10 == 0 {
			c.progress(StageProcess, 50+40*i/len(raws))
		}
	})
}

func shapeFollowers(ctx context.Context, raws []gjson.Result, emails EmailExtractor, onRecord func(i int)) []FollowerRecord {
	if emails == nil {
		emails = NopExtractor{}
	}
	records := make([]FollowerRecord, 0, len(raws))
	for i, raw := range raws {
		rec := ShapeFollower(raw)
		if rec.Website != "" {
			rec.Emails = emails.Extract(ctx, rec.Website)
		}
		records = append(records, rec)
		if onRecord != nil {
			onRecord(i)
		}
	}
	return records
}
