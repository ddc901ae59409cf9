package twitter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrMissingCredentials = errors.New("missing API credentials")
	ErrInvalidProfileURL  = errors.New("invalid X/Twitter profile URL")
	ErrInvalidHandle      = errors.New("invalid handle")
	ErrInvalidUserID      = errors.New("empty user id")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoFollowers        = errors.New("no followers found")
	ErrRateLimited        = errors.New("rate limited")
)

// ErrorClass categorizes X API error responses.
type ErrorClass int

const (
	ClassNone          ErrorClass = iota
	ClassRateLimited              // 88, HTTP 429
	ClassSuspended                // 63, 64
	ClassNotFound                 // 17, 34, 50, HTTP 404
	ClassAuth                     // 32, 89, 215, HTTP 401
	ClassAccessLevel              // 453, client-not-enrolled
	ClassNotAuthorized            // 179, 220, HTTP 403
	ClassInternal                 // 131, HTTP 5xx
)

func (c ErrorClass) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassSuspended:
		return "suspended"
	case ClassNotFound:
		return "not_found"
	case ClassAuth:
		return "auth"
	case ClassAccessLevel:
		return "access_level"
	case ClassNotAuthorized:
		return "not_authorized"
	case ClassInternal:
		return "internal"
	}
	return "none"
}

// APIError is a non-200 answer from the provider. Message carries the
// provider's own text verbatim.
type APIError struct {
	Endpoint string
	Status   int
	Class    ErrorClass
	Message  string
	ResetAt  time.Time
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.Status, e.Message)
}

// Is lets errors.Is match ErrRateLimited on throttled responses and
// ErrUserNotFound on unknown-account responses.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Class == ClassRateLimited
	case ErrUserNotFound:
		return e.Class == ClassNotFound
	}
	return false
}

func newAPIError(endpoint string, status int, body []byte, headers map[string]string) *APIError {
	e := &APIError{
		Endpoint: endpoint,
		Status:   status,
		Class:    classifyError(status, body),
		Message:  providerMessage(body),
	}
	if e.Class == ClassRateLimited {
		e.ResetAt = parseRateLimitReset(headerValue(headers, "x-rate-limit-reset"))
	}
	return e
}

// classifyError inspects a response for known X error codes, falling back to
// the HTTP status when the body carries none.
func classifyError(status int, body []byte) ErrorClass {
	doc := gjson.ParseBytes(body)
	for _, e := range doc.Get("errors").Array() {
		switch e.Get("code").Int() {
		case 88:
			return ClassRateLimited
		case 63, 64:
			return ClassSuspended
		case 17, 34, 50:
			return ClassNotFound
		case 32, 89, 215:
			return ClassAuth
		case 453:
			return ClassAccessLevel
		case 179, 220:
			return ClassNotAuthorized
		case 131:
			return ClassInternal
		}
	}
	if doc.Get("reason").String() == "client-not-enrolled" {
		return ClassAccessLevel
	}

	switch {
	case status == 429:
		return ClassRateLimited
	case status == 401:
		return ClassAuth
	case status == 403:
		return ClassNotAuthorized
	case status == 404:
		return ClassNotFound
	case status >= 500:
		return ClassInternal
	}
	return ClassNone
}

// providerMessage pulls the human-readable message out of a v1.1 or v2 error
// body. Any other body is returned whole.
func providerMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, path := range []string{"errors.0.message", "detail", "errors.0.detail", "message", "title", "error"} {
			if m := doc.Get(path).String(); m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

// headerValue does a case-insensitive lookup in a response header map.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
