package twitter

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-playground/validator/v10"
)

// APIVersion selects the X API endpoint family.
type APIVersion int

const (
	APIv1 APIVersion = iota + 1 // legacy v1.1, OAuth1 user context
	APIv2                       // v2, app-only bearer token
)

func (v APIVersion) String() string {
	switch v {
	case APIv1:
		return "1.1"
	case APIv2:
		return "2"
	}
	return "unknown"
}

// ParseAPIVersion accepts "1", "1.1", "v1.1", "2" and "v2". Empty input means auto (0).
func ParseAPIVersion(s string) (APIVersion, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v") {
	case "":
		return 0, nil
	case "1", "1.1":
		return APIv1, nil
	case "2":
		return APIv2, nil
	}
	return 0, fmt.Errorf("unknown API version %q", s)
}

// Authorizer adds authentication to an outgoing request.
type Authorizer interface {
	// Authorize sets the authorization header(s) for method and rawURL.
	Authorize(method, rawURL string, headers map[string]string) error
	// Validate reports ErrMissingCredentials when the credential set is incomplete.
	Validate() error
	// APIVersion is the endpoint family these credentials are meant for.
	APIVersion() APIVersion
}

var validate = validator.New()

// validateCredentials runs struct-tag validation and turns failures into
// ErrMissingCredentials naming the empty fields.
func validateCredentials(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(fields, ", "))
}

// BearerToken authorizes app-level v2 requests.
type BearerToken struct {
	Token string `validate:"required"`
}

func (b BearerToken) Authorize(_, _ string, headers map[string]string) error {
	headers["authorization"] = "Bearer " + b.Token
	return nil
}

func (b BearerToken) Validate() error { return validateCredentials(b) }

func (b BearerToken) APIVersion() APIVersion { return APIv2 }

// OAuth1Credentials sign v1.1 requests in user context (OAuth 1.0a, HMAC-SHA1).
type OAuth1Credentials struct {
	ConsumerKey       string `validate:"required"`
	ConsumerSecret    string `validate:"required"`
	AccessToken       string `validate:"required"`
	AccessTokenSecret string `validate:"required"`
}

// oauthNow and oauthNonce are swapped in tests for deterministic signatures.
var (
	oauthNow   = time.Now
	oauthNonce = generateNonce
)

func (o OAuth1Credentials) Authorize(method, rawURL string, headers map[string]string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     o.ConsumerKey,
		"oauth_nonce":            oauthNonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(oauthNow().Unix(), 10),
		"oauth_token":            o.AccessToken,
		"oauth_version":          "1.0",
	}

	signer := &oauth1.HMACSigner{ConsumerSecret: o.ConsumerSecret}
	signature, err := signer.Sign(o.AccessTokenSecret, signatureBase(method, u, oauthParams))
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	oauthParams["oauth_signature"] = signature

	headers["authorization"] = authorizationHeader(oauthParams)
	return nil
}

func (o OAuth1Credentials) Validate() error { return validateCredentials(o) }

func (o OAuth1Credentials) APIVersion() APIVersion { return APIv1 }

// signatureBase builds the OAuth 1.0a signature base string:
// METHOD&encoded(base URL)&encoded(sorted parameters).
func signatureBase(method string, u *url.URL, oauthParams map[string]string) string {
	var pairs [][2]string
	for k, vs := range u.Query() {
		for _, v := range vs {
			pairs = append(pairs, [2]string{percentEncode(k), percentEncode(v)})
		}
	}
	for k, v := range oauthParams {
		pairs = append(pairs, [2]string{percentEncode(k), percentEncode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	joined := make([]string, len(pairs))
	for i, p := range pairs {
		joined[i] = p[0] + "=" + p[1]
	}

	base := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.EscapedPath()
	return strings.ToUpper(method) + "&" + percentEncode(base) + "&" + percentEncode(strings.Join(joined, "&"))
}

func authorizationHeader(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(params[k])))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// percentEncode is RFC 3986 encoding: everything but ALPHA / DIGIT / "-" / "." / "_" / "~".
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// Credentials is the raw credential input a caller collects from a user.
type Credentials struct {
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	BearerToken       string `json:"bearer_token"`
}

// Authorizer picks the credential variant. An explicit version wins; otherwise
// any filled signing field selects OAuth1, and a lone bearer token selects v2.
// The returned Authorizer is validated.
func (c Credentials) Authorizer(version APIVersion) (Authorizer, error) {
	oauth := OAuth1Credentials{
		ConsumerKey:       strings.TrimSpace(c.ConsumerKey),
		ConsumerSecret:    strings.TrimSpace(c.ConsumerSecret),
		AccessToken:       strings.TrimSpace(c.AccessToken),
		AccessTokenSecret: strings.TrimSpace(c.AccessTokenSecret),
	}
	bearer := BearerToken{Token: strings.TrimSpace(c.BearerToken)}

	if version == 0 {
		switch {
		case oauth != (OAuth1Credentials{}):
			version = APIv1
		case bearer.Token != "":
			version = APIv2
		default:
			return nil, fmt.Errorf("%w: provide a bearer token or all four OAuth1 values", ErrMissingCredentials)
		}
	}

	var a Authorizer = bearer
	if version == APIv1 {
		a = oauth
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
