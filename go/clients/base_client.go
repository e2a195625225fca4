package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// APIError is returned when the remote API answers with a non-2xx status.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API returned status code: %d, response: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API returned status code: %d", e.StatusCode)
}

// IsStatus reports whether err is an *APIError carrying the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string

	// GET retry policy. POSTs are never retried.
	maxRetries      uint64
	initialInterval time.Duration
}

func NewBaseClient(baseURL string) *BaseClient {
	return &BaseClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers:         make(map[string]string),
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
	}
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetRetryPolicy configures exponential backoff for idempotent requests.
// maxRetries of 0 disables retrying.
func (c *BaseClient) SetRetryPolicy(maxRetries uint64, initialInterval time.Duration) {
	c.maxRetries = maxRetries
	c.initialInterval = initialInterval
}

func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(responseBody),
		}
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return responseBody, nil
}

// Get performs a GET, retrying transport errors and 5xx responses with
// exponential backoff. 4xx responses are returned immediately.
func (c *BaseClient) Get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	if c.maxRetries == 0 {
		return c.MakeRequest(ctx, http.MethodGet, endpoint, nil, headers)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var body []byte
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		body, err = c.MakeRequest(ctx, http.MethodGet, endpoint, nil, headers)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}

		log.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Msg("GET failed, retrying")
		return err
	}, policy)
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (c *BaseClient) Post(ctx context.Context, endpoint string, body io.Reader, headers map[string]string) ([]byte, error) {
	return c.MakeRequest(ctx, http.MethodPost, endpoint, body, headers)
}
