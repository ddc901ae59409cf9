package twitter

import (
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type fakeResponse struct {
	status  int
	body    string
	headers map[string]string
	err     error
}

type fakeRequest struct {
	method  string
	url     string
	headers map[string]string
}

// fakeDoer answers requests from route, matched by URL path.
type fakeDoer struct {
	mu       sync.Mutex
	route    func(u *url.URL) fakeResponse
	requests []fakeRequest
}

func (f *fakeDoer) DoWithHeaderOrder(method, urlStr string, headers map[string]string, _ io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	f.mu.Lock()
	f.requests = append(f.requests, fakeRequest{method: method, url: urlStr, headers: headers})
	f.mu.Unlock()

	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, nil, 0, err
	}
	r := f.route(u)
	if r.err != nil {
		return nil, nil, 0, r.err
	}
	return []byte(r.body), r.headers, r.status, nil
}

func (f *fakeDoer) requestsTo(pathPart string) []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeRequest
	for _, r := range f.requests {
		if strings.Contains(r.url, pathPart) {
			out = append(out, r)
		}
	}
	return out
}

func ok(body string) fakeResponse { return fakeResponse{status: 200, body: body} }

func testBearer() Authorizer { return BearerToken{Token: "test-bearer"} }

func testOAuth1() Authorizer {
	return OAuth1Credentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}
}

// newTestClient builds a client with no inter-page delay and no email lookups.
func newTestClient(t testing.TB, auth Authorizer, doer *fakeDoer, mutate ...func(*ClientConfig)) *Client {
	cfg := ClientConfig{
		Auth:            auth,
		BaseURL:         "https://api.test",
		Transport:       doer,
		RateLimitPolicy: FixedDelay(0),
		Emails:          NopExtractor{},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	t.Helper()
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

