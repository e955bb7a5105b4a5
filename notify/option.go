package notify

import (
	"net/http"

	"github.com/onchaincommerce/onchaincommerce/logger"
)

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}
