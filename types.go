package twitter

import "time"

// FollowerRecord is one follower flattened for tabular display and export.
type FollowerRecord struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	Description    string   `json:"description"` // truncated to maxBioLength runes + bioEllipsis
	Website        string   `json:"website"`
	Emails         []string `json:"emails"`
	Verified       bool     `json:"verified"`
	FollowersCount int      `json:"followers_count"`
	FollowingCount int      `json:"following_count"`
	TweetCount     int      `json:"tweet_count"`
	CreatedAt      string   `json:"created_at"` // RFC 3339 when the provider value parses, raw otherwise
}

// HasWebsite reports whether the follower declared a website.
func (r FollowerRecord) HasWebsite() bool { return r.Website != "" }

// HasEmail reports whether any email was derived for the follower.
func (r FollowerRecord) HasEmail() bool { return len(r.Emails) > 0 }

// Cursor is the continuation marker carried between follower page requests.
type Cursor struct {
	Value string
	Done  bool
}

// Stage is a step of an extraction run, reported through ClientConfig.Progress.
type Stage int

const (
	StageResolve Stage = iota + 1
	StageFetch
	StageProcess
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "resolve"
	case StageFetch:
		return "fetch"
	case StageProcess:
		return "process"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Result is the outcome of one extraction run.
type Result struct {
	Handle    string
	UserID    string
	Records   []FollowerRecord
	Summary   Summary
	FetchedAt time.Time

	// PageErr is set when pagination stopped on an error after at least one
	// page was fetched. Records then hold the partial result.
	PageErr error
}
