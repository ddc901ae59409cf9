package twitter

import (
	"net/url"
	"strconv"
	"strings"
)

const defaultAPIURL = "https://api.twitter.com"

// Operation names used for logging, metrics and rate-limit bookkeeping.
const (
	endpointUserLookup = "UserLookup"
	endpointFollowers  = "Followers"
)

const (
	// legacyPageSize is the fixed count sent to followers/list.json.
	legacyPageSize = 200
	// v2MaxPageSize is the largest max_results the v2 followers endpoint accepts.
	v2MaxPageSize = 1000
)

// v2UserFields are the user.fields requested from the v2 followers endpoint.
const v2UserFields = "created_at,description,entities,public_metrics,url,verified"

// userLookupURL returns the "user by handle" URL for the given API version.
func userLookupURL(base string, v APIVersion, handle string) string {
	base = strings.TrimRight(base, "/")
	if v == APIv1 {
		q := url.Values{"screen_name": {handle}}
		return base + "/1.1/users/show.json?" + q.Encode()
	}
	return base + "/2/users/by/username/" + url.PathEscape(handle)
}

// followersURL returns one follower page URL. cursor is the continuation
// marker from the previous page; the start sentinel is omitted. remaining
// sizes the v2 page.
func followersURL(base string, v APIVersion, userID, cursor string, remaining int) string {
	base = strings.TrimRight(base, "/")
	if v == APIv1 {
		q := url.Values{
			"user_id": {userID},
			"count":   {strconv.Itoa(legacyPageSize)},
		}
		if cursor != "" && cursor != legacyStartCursor {
			q.Set("cursor", cursor)
		}
		return base + "/1.1/followers/list.json?" + q.Encode()
	}

	q := url.Values{
		"max_results": {strconv.Itoa(min(max(remaining, 1), v2MaxPageSize))},
		"user.fields": {v2UserFields},
	}
	if cursor != "" {
		q.Set("pagination_token", cursor)
	}
	return base + "/2/users/" + url.PathEscape(userID) + "/followers?" + q.Encode()
}
