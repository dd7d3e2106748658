// Package api implements the HTTP client for the remote narration service:
// job submission, composite status queries, and alignment track retrieval.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/speakdown/narrate"
)

// Config holds client configuration.
type Config struct {
	// BaseURL of the narration service, e.g. "https://api.example.com".
	BaseURL string

	// APIKey sent as a bearer token. Optional for self-hosted services.
	APIKey string

	// Timeout for a single HTTP request.
	Timeout time.Duration

	// RetryCount bounds transport-level retries per request. This is the
	// explicit retry knob: the Awaiter above never retries transport
	// failures itself.
	RetryCount int

	// RequestsPerMinute rate-limits outgoing requests to avoid tripping the
	// service's limits during large batch runs.
	RequestsPerMinute int
}

// DefaultConfig returns the standard client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		RetryCount:        2,
		RequestsPerMinute: 120,
	}
}

// Client talks to the remote narration service. It implements
// narrate.StatusPoller and narrate.TrackFetcher.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaults.RequestsPerMinute
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("User-Agent", "speakdown")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:  log.Default(),
	}
}

// SetLogger replaces the client logger.
func (c *Client) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SubmitRequest describes one narration job.
type SubmitRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice"`
	Quality  string `json:"quality,omitempty"`
	Language string `json:"language,omitempty"`
}

// submitResponse tolerates both identifier field names the service has used.
type submitResponse struct {
	JobID string `json:"job_id"`
	ID    string `json:"id"`
}

// Submit queues a synthesis job and returns its identifier.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}

	var out submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetBody(req).
		SetResult(&out).
		Post("/v1/speech")
	if err != nil {
		return "", &narrate.TransportError{Op: "submit", Err: err}
	}
	if resp.IsError() {
		return "", &narrate.TransportError{
			Op:  "submit",
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	jobID := out.JobID
	if jobID == "" {
		jobID = out.ID
	}
	if jobID == "" {
		return "", &narrate.MalformedResponseError{
			Payload: resp.String(),
			Err:     fmt.Errorf("submit response carries no job identifier"),
		}
	}

	c.logger.Debug("submitted narration job", "job", jobID, "chars", len(req.Text))
	return jobID, nil
}

// Poll performs one composite status query and normalizes the response.
func (c *Client) Poll(ctx context.Context, jobID string) (narrate.CompositeJobView, error) {
	if jobID == "" {
		return narrate.CompositeJobView{}, narrate.ErrEmptyJobID
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return narrate.CompositeJobView{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		Get("/v1/speech/" + jobID)
	if err != nil {
		return narrate.CompositeJobView{}, &narrate.TransportError{Op: "status", Err: err}
	}
	if resp.IsError() {
		return narrate.CompositeJobView{}, &narrate.TransportError{
			Op:  "status",
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	return narrate.NormalizeStatusPayload(resp.Body())
}

// FetchAlignment retrieves the word timeline for a completed alignment job.
// A missing track maps to narrate.ErrTrackUnavailable so callers can degrade
// to verbatim rendering.
func (c *Client) FetchAlignment(ctx context.Context, ref string) (narrate.AlignmentTrack, error) {
	if ref == "" {
		return narrate.AlignmentTrack{}, narrate.ErrTrackUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return narrate.AlignmentTrack{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	var track narrate.AlignmentTrack
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetResult(&track).
		Get("/v1/alignments/" + ref)
	if err != nil {
		return narrate.AlignmentTrack{}, &narrate.TransportError{Op: "alignment", Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return narrate.AlignmentTrack{}, narrate.ErrTrackUnavailable
	}
	if resp.IsError() {
		return narrate.AlignmentTrack{}, &narrate.TransportError{
			Op:  "alignment",
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	c.logger.Debug("fetched alignment track", "ref", ref, "words", len(track.Words))
	return track, nil
}

// Compile-time interface checks.
var (
	_ narrate.StatusPoller = (*Client)(nil)
	_ narrate.TrackFetcher = (*Client)(nil)
)
