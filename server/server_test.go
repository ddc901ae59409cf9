package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	twitter "github.com/anatolykoptev/go-twitter-followers"
)

type stubDoer struct {
	mu    sync.Mutex
	calls int
	fn    func(u *url.URL) (int, string)
}

func (d *stubDoer) DoWithHeaderOrder(_, urlStr string, _ map[string]string, _ io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, nil, 0, err
	}
	status, body := d.fn(u)
	return []byte(body), nil, status, nil
}

func followersAPI(u *url.URL) (int, string) {
	switch u.Path {
	case "/2/users/by/username/jack":
		return 200, `{"data":{"id":"42","username":"jack"}}`
	case "/2/users/42/followers":
		return 200, `{"data":[{"id":"1","username":"a","name":"A, Inc.","url":"http://a.com"},{"id":"2","username":"b"}],"meta":{"result_count":2}}`
	}
	return 404, `{"title":"Not Found Error"}`
}

func newTestServer(doer *stubDoer) *Server {
	s := New(twitter.ClientConfig{
		BaseURL:         "https://api.test",
		Transport:       doer,
		RateLimitPolicy: twitter.FixedDelay(0),
		Emails:          &twitter.SimulatedExtractor{Roll: func() float64 { return 0 }},
	})
	s.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }
	return s
}

func post(s http.Handler, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubDoer{fn: followersAPI})
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestExtract_JSON(t *testing.T) {
	s := newTestServer(&stubDoer{fn: followersAPI})

	w := post(s, "/api/extract", `{"bearer_token":"tok","profile_url":"https://x.com/jack","max_results":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp extractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jack", resp.Handle)
	assert.Equal(t, "42", resp.UserID)
	assert.Equal(t, "2", resp.APIVersion)
	require.Len(t, resp.Followers, 2)
	assert.Equal(t, []string{"contact@a.com", "info@a.com"}, resp.Followers[0].Emails)
	assert.Equal(t, 2, resp.Summary.Total)
	assert.Equal(t, 1, resp.Charts.Websites["Has Website"])
	assert.Equal(t, 1, resp.Charts.Emails["No Email"])
	assert.Empty(t, resp.Warning)
}

func TestExtract_CSV(t *testing.T) {
	s := newTestServer(&stubDoer{fn: followersAPI})

	w := post(s, "/api/extract.csv", `{"bearer_token":"tok","profile_url":"https://twitter.com/jack"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="x_followers_20240305_143000.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	records, err := twitter.ReadCSV(w.Body)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A, Inc.", records[0].Name)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fn     func(u *url.URL) (int, string)
		status int
		code   string
		calls  bool
	}{
		{"malformed body", `{`, followersAPI, http.StatusBadRequest, "bad_request", false},
		{"unknown field", `{"bearer_token":"t","profile_url":"https://x.com/jack","extra":1}`, followersAPI, http.StatusBadRequest, "bad_request", false},
		{"bad api version", `{"bearer_token":"t","profile_url":"https://x.com/jack","api_version":"3"}`, followersAPI, http.StatusBadRequest, "bad_request", false},
		{"no credentials", `{"profile_url":"https://x.com/jack"}`, followersAPI, http.StatusBadRequest, "missing_credentials", false},
		{"partial oauth1", `{"consumer_key":"ck","profile_url":"https://x.com/jack"}`, followersAPI, http.StatusBadRequest, "missing_credentials", false},
		{"bad url", `{"bearer_token":"t","profile_url":"https://example.com/jack"}`, followersAPI, http.StatusBadRequest, "invalid_profile_url", false},
		{"rate limited", `{"bearer_token":"t","profile_url":"https://x.com/jack"}`,
			func(*url.URL) (int, string) { return 429, `{"title":"Too Many Requests"}` },
			http.StatusTooManyRequests, "rate_limited", true},
		{"provider error", `{"bearer_token":"t","profile_url":"https://x.com/jack"}`,
			func(*url.URL) (int, string) { return 403, `{"errors":[{"code":453,"message":"You may need a different access level."}]}` },
			http.StatusBadGateway, "provider_error", true},
		{"no followers", `{"bearer_token":"t","profile_url":"https://x.com/jack"}`,
			func(u *url.URL) (int, string) {
				if strings.HasSuffix(u.Path, "/followers") {
					return 200, `{"meta":{"result_count":0}}`
				}
				return followersAPI(u)
			},
			http.StatusNotFound, "no_followers", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &stubDoer{fn: tt.fn}
			w := post(newTestServer(doer), "/api/extract", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var payload ErrorPayload
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			assert.Equal(t, tt.code, payload.Error)
			assert.Equal(t, tt.calls, doer.calls > 0)
		})
	}
}

func TestExtract_ProviderMessageVerbatim(t *testing.T) {
	doer := &stubDoer{fn: func(*url.URL) (int, string) {
		return 403, `{"errors":[{"code":453,"message":"You may need a different access level."}]}`
	}}
	w := post(newTestServer(doer), "/api/extract", `{"bearer_token":"t","profile_url":"https://x.com/jack"}`)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload.Message, "You may need a different access level.")
	assert.Equal(t, twitter.ClassAccessLevel.String(), payload.Class)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&stubDoer{fn: followersAPI})
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/extract", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestExtract_UnknownAccount(t *testing.T) {
	doer := &stubDoer{fn: func(*url.URL) (int, string) {
		return 404, `{"errors":[{"code":50,"message":"User not found."}]}`
	}}
	w := post(newTestServer(doer), "/api/extract", `{"bearer_token":"t","profile_url":"https://x.com/ghost"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "user_not_found", payload.Error)
	assert.Contains(t, payload.Message, "User not found.")
}
