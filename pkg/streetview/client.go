// Package streetview implements the remote-API capture backend: a
// metadata availability check followed by a Street View Static API
// image fetch.
package streetview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"streetgrab/pkg/errors"
	"streetgrab/pkg/logger"
	"streetgrab/pkg/ratelimit"
	"streetgrab/pkg/retry"
)

// Client talks to the Street View Static API
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	limiter    ratelimit.Limiter
	retryCfg   *retry.Config
	logger     logger.Logger
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (used by tests)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithLimiter sets the rate limiter consulted before each metadata request
func WithLimiter(l ratelimit.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the retry policy for transport failures
func WithRetry(cfg *retry.Config) ClientOption {
	return func(c *Client) { c.retryCfg = cfg }
}

// NewClient creates a Street View API client
func NewClient(key string, timeout time.Duration, log logger.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		key:        key,
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Metadata queries imagery availability for a coordinate. One rate-limit
// token covers the whole attempt, since the image fetch only ever follows
// a successful metadata check.
func (c *Client) Metadata(ctx context.Context, lat, lng float64, radius int, source string) (*MetadataResponse, error) {
	if c.limiter != nil {
		if !c.limiter.Allow() {
			logger.LogRateLimit("streetview_metadata", 60)
			c.limiter.Wait()
		}
	}

	endpoint := MetadataURL(c.baseURL, lat, lng, radius, source, c.key)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var meta MetadataResponse
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, errors.Newf(errors.ErrorTypeTransport, "undecodable metadata response: %v", err)
	}

	c.logger.DebugWithFields("metadata response", map[string]interface{}{
		"lat":     lat,
		"lng":     lng,
		"status":  meta.Status,
		"pano_id": meta.PanoID,
	})

	return &meta, nil
}

// Image fetches the panorama raster and returns the raw bytes unmodified
func (c *Client) Image(ctx context.Context, lat, lng float64, params ImageParams) ([]byte, error) {
	endpoint := ImageURL(c.baseURL, lat, lng, params, c.key)
	return c.get(ctx, endpoint)
}

// get performs a GET with transport-level retry. HTTP status >= 400 and
// connection failures surface as transport errors.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.WithError(err).WithField("url", req.URL.Redacted()).Error("HTTP request failed")
			return nil, errors.NewTransport(fmt.Sprintf("network error: %v", err), 0)
		}
		defer resp.Body.Close()

		logger.LogRequest(req.Method, req.URL.Redacted(), resp.StatusCode, float64(duration.Milliseconds()))

		if resp.StatusCode >= 400 {
			return nil, errors.NewTransport(
				fmt.Sprintf("server returned status %d", resp.StatusCode),
				resp.StatusCode,
			)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.NewTransport(fmt.Sprintf("failed to read response body: %v", err), 0)
		}
		return body, nil
	}

	if c.retryCfg == nil {
		return op()
	}

	cfg := *c.retryCfg
	cfg.Context = ctx
	cfg.RetryIf = func(err error) bool {
		var typed *errors.Error
		if stderrors.As(err, &typed) {
			return typed.Type == errors.ErrorTypeTransport && errors.IsRetryableStatusCode(typed.Code)
		}
		return false
	}

	return retry.DoWithResult(op, &cfg)
}
