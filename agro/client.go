package agro

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

	"github.com/rs/zerolog"
)

// DefaultTimeout applies to the whole request, including reading the body
const DefaultTimeout = 30 * time.Second

const mediaType = "application/json; charset=utf-8"

// Resource labels used in logs and metrics
const (
	resourcePolygons    = "polygons"
	resourceImagery     = "imagery"
	resourceStats       = "stats"
	resourceRaw         = "raw"
	resourceWeather     = "weather"
	resourceNDVIHistory = "ndvi_history"
)

// Client represents an Agro API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
	metrics    *Metrics
	lenient    bool
}

// NewClient creates a new Agro API client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	o := clientOptions{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(o.baseURL, "/")
	if err := checkURL(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		userAgent:  o.userAgent,
		logger:     logger,
		metrics:    o.metrics,
		lenient:    o.lenient,
	}, nil
}

// TestConnection verifies the API key by listing polygons
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.ListPolygons(ctx); err != nil {
		return fmt.Errorf("failed to connect to Agro API: %w", err)
	}
	return nil
}

// request describes a single API call
type request struct {
	resource string
	method   string
	url      string
	body     []byte
	// raw requests fetch binary payloads and carry no JSON headers
	raw bool
}

// execute performs one HTTP exchange and returns the body of a successful response
func (c *Client) execute(ctx context.Context, r request) ([]byte, error) {
	start := time.Now()
	body, status, err := c.do(ctx, r)
	elapsed := time.Since(start)

	c.metrics.observe(r.resource, r.method, outcomeOf(err), elapsed)

	c.logger.Debug().
		Err(err).
		Str("method", r.method).
		Str("resource", r.resource).
		Str("url", c.redact(r.url)).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("Agro API request")

	return body, err
}

func (c *Client) do(ctx context.Context, r request) ([]byte, int, error) {
	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reader)
	if err != nil {
		return nil, 0, unknownError(fmt.Errorf("failed to create request: %w", err))
	}

	if !r.raw {
		req.Header.Set("Accept", mediaType)
		req.Header.Set("Content-Type", mediaType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, networkError(fmt.Errorf("failed to read response body: %w", err))
	}

	return body, resp.StatusCode, nil
}

// classifyTransport maps an error from http.Client.Do onto the error taxonomy
func classifyTransport(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return networkError(err)
	}
	return unknownError(err)
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return KindOf(err).String()
}

// fetchJSON executes r and decodes the body into T
func fetchJSON[T any](ctx context.Context, c *Client, r request) (*T, error) {
	body, err := c.execute(ctx, r)
	if err != nil {
		return nil, err
	}
	return decode[T](c, body)
}

// fetchList executes r and decodes the body into a slice of T
func fetchList[T any](ctx context.Context, c *Client, r request) ([]T, error) {
	list, err := fetchJSON[[]T](ctx, c, r)
	if err != nil || list == nil {
		return nil, err
	}
	return *list, nil
}

func marshalBody(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return body, nil
}
