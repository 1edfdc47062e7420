package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"speech_to_act/backend/go/internal/config"
	"speech_to_act/backend/go/pkg/circuitbreaker"
	"speech_to_act/backend/go/pkg/logger"
)

// DefaultRequestTimeout bounds a single downstream call when the config leaves it empty.
const DefaultRequestTimeout = 10 * time.Second

// Client is a custom HTTP client that wraps the standard http.Client
// and provides built-in support for circuit breaking.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Client. The circuit breaker is only installed when enabled.
func NewClient(cfg config.CircuitBreakerConfig, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	timeout := DefaultRequestTimeout
	if cfg.RequestTimeout != "" {
		d, err := time.ParseDuration(cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid request timeout duration: %w", err)
		}
		timeout = d
	}

	c := &Client{httpClient: &http.Client{Timeout: timeout}}
	if cfg.Enabled {
		if log == nil {
			log = logger.Discard()
		}
		breaker, err := createCircuitBreaker(cfg, log)
		if err != nil {
			return nil, err
		}
		c.breaker = breaker
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// statusError marks a response the breaker should count as a failure
// while still handing it back to the caller.
type statusError struct {
	resp *http.Response
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error: received status code %d", e.resp.StatusCode)
}

// Do executes an HTTP request with circuit breaker protection.
// Status codes >= 500 count as failures, but the response is still returned
// so the caller can read the downstream error body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &statusError{resp: resp}
		}
		return resp, nil
	})

	var se *statusError
	if errors.As(err, &se) {
		return se.resp, nil
	}
	if err != nil {
		return nil, err
	}
	return res.(*http.Response), nil
}
