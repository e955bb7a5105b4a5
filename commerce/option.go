package commerce

import (
	"net/http"
	"time"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/metrics"
)

type Option func(*Client)

// WithBaseURL points the client at a different API endpoint. Used by
// tests and staging environments.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = t
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.rec = r
	}
}
