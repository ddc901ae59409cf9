package twitter

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	maxBioLength = 100
	bioEllipsis  = "..."
)

// legacyStartCursor is the v1.1 "first page" cursor; "0" means no more pages.
const (
	legacyStartCursor = "-1"
	legacyEndCursor   = "0"
)

// legacyTimeLayout is the v1.1 created_at format.
const legacyTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// startCursor returns the cursor a pagination run begins with.
func startCursor(v APIVersion) Cursor {
	if v == APIv1 {
		return Cursor{Value: legacyStartCursor}
	}
	return Cursor{}
}

// parseUserID reads the account id from a user lookup response.
func parseUserID(body []byte, v APIVersion) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("unmarshal user lookup: invalid JSON: %s", truncateBytes(body, 200))
	}
	doc := gjson.ParseBytes(body)

	path := "data.id"
	if v == APIv1 {
		path = "id_str"
	}
	if id := doc.Get(path).String(); id != "" {
		return id, nil
	}
	if msg := doc.Get("errors.0.detail").String(); msg != "" {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, msg)
	}
	return "", ErrUserNotFound
}

// parseFollowerPage splits one follower page into raw entries and the next cursor.
func parseFollowerPage(body []byte, v APIVersion) ([]gjson.Result, Cursor, error) {
	if !gjson.ValidBytes(body) {
		return nil, Cursor{}, fmt.Errorf("unmarshal follower page: invalid JSON: %s", truncateBytes(body, 200))
	}
	doc := gjson.ParseBytes(body)

	if v == APIv1 {
		users := doc.Get("users")
		if users.Exists() && !users.IsArray() {
			return nil, Cursor{}, fmt.Errorf("unmarshal follower page: users is %s", users.Type)
		}
		next := doc.Get("next_cursor_str").String()
		if next == "" {
			next = doc.Get("next_cursor").Raw
		}
		return users.Array(), Cursor{Value: next, Done: next == "" || next == legacyEndCursor}, nil
	}

	data := doc.Get("data")
	if data.Exists() && !data.IsArray() {
		return nil, Cursor{}, fmt.Errorf("unmarshal follower page: data is %s", data.Type)
	}
	next := doc.Get("meta.next_token").String()
	return data.Array(), Cursor{Value: next, Done: next == ""}, nil
}

// ShapeFollower maps one raw follower entry of either schema to a
// FollowerRecord. Missing fields take zero values; a non-object entry yields
// the zero record. Emails are left for the caller to derive.
func ShapeFollower(raw gjson.Result) FollowerRecord {
	if !raw.IsObject() {
		return FollowerRecord{}
	}

	id := raw.Get("id_str").String()
	if id == "" {
		id = raw.Get("id").String()
	}
	username := raw.Get("screen_name").String()
	if username == "" {
		username = raw.Get("username").String()
	}

	followers := raw.Get("followers_count")
	following := raw.Get("friends_count")
	tweets := raw.Get("statuses_count")
	if pm := raw.Get("public_metrics"); pm.IsObject() {
		followers = pm.Get("followers_count")
		following = pm.Get("following_count")
		tweets = pm.Get("tweet_count")
	}

	return FollowerRecord{
		ID:             id,
		Username:       username,
		Name:           normalizeNewlines(raw.Get("name").String()),
		Description:    truncateBio(normalizeNewlines(raw.Get("description").String())),
		Website:        website(raw),
		Verified:       raw.Get("verified").Bool(),
		FollowersCount: int(followers.Int()),
		FollowingCount: int(following.Int()),
		TweetCount:     int(tweets.Int()),
		CreatedAt:      normalizeCreatedAt(raw.Get("created_at").String()),
	}
}

// website prefers the expanded profile URL over the t.co short link.
func website(raw gjson.Result) string {
	u := raw.Get("url").String()
	if u == "" {
		return ""
	}
	if expanded := raw.Get("entities.url.urls.0.expanded_url").String(); expanded != "" {
		return expanded
	}
	return u
}

// normalizeNewlines turns CRLF into LF, the form a CSV reader hands back.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func truncateBio(bio string) string {
	r := []rune(bio)
	if len(r) <= maxBioLength {
		return bio
	}
	return string(r[:maxBioLength]) + bioEllipsis
}

// normalizeCreatedAt renders both the v1.1 and the v2 timestamp formats as RFC 3339.
func normalizeCreatedAt(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse(legacyTimeLayout, s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return s
}
