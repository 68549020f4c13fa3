// Package media is the HTTP client for the external media-processing
// collaborator that performs the actual audio slicing and probing. The
// engine only sends range triples and consumes the returned metadata.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erniesg/aidobe-sub002/internal/analysis/audiomix"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

var (
	ErrNotConfigured = errors.New("media collaborator not configured")
	ErrTransient     = errors.New("transient media collaborator failure")
)

// ExtractRequest asks the collaborator to slice sub-ranges out of one track.
type ExtractRequest struct {
	AudioURL string         `json:"audioUrl"`
	Ranges   []RequestRange `json:"ranges"`
}

// RequestRange is the triple the collaborator needs per slice.
type RequestRange struct {
	SceneID   string  `json:"sceneId"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// ExtractedSegment is one slice the collaborator produced.
type ExtractedSegment struct {
	SceneID  string  `json:"sceneId"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"`
}

// ExtractResponse is the collaborator's answer for a whole batch.
type ExtractResponse struct {
	Segments []ExtractedSegment `json:"segments"`
}

// Options configures the collaborator client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// Client calls the media-processing collaborator with bounded timeouts and
// a small number of retries with exponential backoff on transient failures.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// NewClient builds a collaborator client. A client with an empty base URL
// is valid but disabled; calls against it fail with ErrNotConfigured.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Enabled reports whether a collaborator endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Extract submits a slicing batch and returns the collaborator's segments.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.AudioURL) == "" {
		return nil, fmt.Errorf("extract request missing audio url")
	}
	if len(req.Ranges) == 0 {
		return nil, fmt.Errorf("extract request has no ranges")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode extract request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.postExtract(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("media extract failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) postExtract(ctx context.Context, body []byte) (*ExtractResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer httpResp.Body.Close()

	if err := checkStatus(httpResp); err != nil {
		return nil, err
	}

	var resp ExtractResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode extract response: %w", err)
	}
	return &resp, nil
}

// Duration asks the collaborator for the measured length of a track.
func (c *Client) Duration(ctx context.Context, audioURL string) (float64, error) {
	if !c.Enabled() {
		return 0, ErrNotConfigured
	}
	if strings.TrimSpace(audioURL) == "" {
		return 0, fmt.Errorf("duration request missing audio url")
	}

	endpoint := c.baseURL + "/v1/audio/duration?url=" + url.QueryEscape(audioURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer httpResp.Body.Close()

	if err := checkStatus(httpResp); err != nil {
		return 0, err
	}

	var payload struct {
		Duration float64 `json:"duration"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode duration response: %w", err)
	}
	return payload.Duration, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return fmt.Errorf("media collaborator rejected request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// RangesFrom converts engine extraction ranges into request triples.
func RangesFrom(ranges []timeline.AudioExtractionRange) []RequestRange {
	out := make([]RequestRange, len(ranges))
	for i, r := range ranges {
		out[i] = RequestRange{SceneID: r.SceneID, StartTime: r.StartTime, EndTime: r.EndTime}
	}
	return out
}

// Apply copies the collaborator's URLs onto the engine-built segments by
// scene id. A measured duration, when reported, replaces the window-derived
// one.
func Apply(segments []timeline.AudioSegment, resp *ExtractResponse) []timeline.AudioSegment {
	if resp == nil || len(resp.Segments) == 0 {
		return segments
	}

	byScene := make(map[string]ExtractedSegment, len(resp.Segments))
	for _, s := range resp.Segments {
		byScene[s.SceneID] = s
	}

	merged := append([]timeline.AudioSegment(nil), segments...)
	for i := range merged {
		extracted, ok := byScene[merged[i].SceneID]
		if !ok {
			continue
		}
		merged[i].AudioURL = extracted.AudioURL
		if extracted.Duration > 0 {
			merged[i].Duration = audiomix.RoundDuration(extracted.Duration)
		}
	}
	return merged
}
