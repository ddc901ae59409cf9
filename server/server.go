// Package server exposes follower extraction over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	twitter "github.com/anatolykoptev/go-twitter-followers"
)

const maxBodyBytes = 64 << 10

// errBadRequest marks request bodies that could not be decoded.
var errBadRequest = errors.New("bad request")

// Server handles extraction requests. Every request carries its own
// credentials; the server keeps none between requests.
type Server struct {
	base   twitter.ClientConfig
	router *httprouter.Router
	now    func() time.Time
}

// New returns a Server that builds one client per request from base.
// base.Auth is ignored.
func New(base twitter.ClientConfig) *Server {
	s := &Server{
		base: base,
		router: &httprouter.Router{
			RedirectTrailingSlash:  true,
			RedirectFixedPath:      true,
			HandleMethodNotAllowed: true,
			HandleOPTIONS:          true,
		},
		now: time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.HealthHandler())
	s.router.POST("/api/extract", s.ExtractHandler())
	s.router.POST("/api/extract.csv", s.ExportHandler())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type extractRequest struct {
	twitter.Credentials
	ProfileURL string `json:"profile_url"`
	MaxResults int    `json:"max_results"`
	APIVersion string `json:"api_version"`
}

type charts struct {
	Websites map[string]int `json:"websites"`
	Emails   map[string]int `json:"emails"`
}

type extractResponse struct {
	Handle     string                   `json:"handle"`
	UserID     string                   `json:"user_id"`
	APIVersion string                   `json:"api_version"`
	Followers  []twitter.FollowerRecord `json:"followers"`
	Summary    twitter.Summary          `json:"summary"`
	Charts     charts                   `json:"charts"`
	Warning    string                   `json:"warning,omitempty"`
	FetchedAt  time.Time                `json:"fetched_at"`
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler() httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ExtractHandler runs an extraction and returns records and summary as JSON.
func (s *Server) ExtractHandler() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		client, req, err := s.prepare(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := client.Extract(r.Context(), req.ProfileURL, req.MaxResults)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := extractResponse{
			Handle:     res.Handle,
			UserID:     res.UserID,
			APIVersion: client.APIVersion().String(),
			Followers:  res.Records,
			Summary:    res.Summary,
			Charts: charts{
				Websites: res.Summary.WebsiteCounts(),
				Emails:   res.Summary.EmailCounts(),
			},
			FetchedAt: res.FetchedAt,
		}
		if res.PageErr != nil {
			resp.Warning = res.PageErr.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ExportHandler runs an extraction and streams the records as a CSV download.
func (s *Server) ExportHandler() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		client, req, err := s.prepare(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := client.Extract(r.Context(), req.ProfileURL, req.MaxResults)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", twitter.ExportFilename(s.now())))
		if res.PageErr != nil {
			w.Header().Set("X-Partial-Result", "true")
		}
		w.WriteHeader(http.StatusOK)
		if err := twitter.WriteCSV(w, res.Records); err != nil {
			slog.Error("csv export failed", slog.String("handle", res.Handle), slog.Any("error", err))
		}
	}
}

// prepare decodes the request body and builds a client for its credentials.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (*twitter.Client, extractRequest, error) {
	var req extractRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, req, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if req.MaxResults < 0 {
		return nil, req, fmt.Errorf("%w: max_results must not be negative", errBadRequest)
	}

	version, err := twitter.ParseAPIVersion(req.APIVersion)
	if err != nil {
		return nil, req, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	auth, err := req.Credentials.Authorizer(version)
	if err != nil {
		return nil, req, err
	}

	cfg := s.base
	cfg.Auth = auth
	client, err := twitter.NewClient(cfg)
	if err != nil {
		return nil, req, err
	}
	return client, req, nil
}
