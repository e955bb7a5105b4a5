// Package notify delivers payment links to customers by text message
// through the relay endpoint. Sends are idempotent from the caller's
// perspective: retrying with the same arguments is always safe, at
// the accepted risk of a duplicate message.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/types"
	"github.com/onchaincommerce/onchaincommerce/utils"
)

const messageTemplate = "Here's your payment link: %s"

// Client posts send requests to the relay server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

func New(relayBaseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    relayBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendPaymentLink formats the templated message around the link and
// submits it to the relay. Any non-2xx relay response is
// NotificationFailed.
func (c *Client) SendPaymentLink(ctx context.Context, destination, link string) error {
	if err := utils.ValidatePhoneNumber(destination); err != nil {
		return &types.Error{Code: types.ErrValidation, Message: err.Error()}
	}
	if link == "" {
		return &types.Error{Code: types.ErrValidation, Message: "payment link is required"}
	}

	payload, err := json.Marshal(sendRequest{
		To:   destination,
		Body: fmt.Sprintf(messageTemplate, link),
	})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/send-sms", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &types.Error{
			Code:    types.ErrNotificationFailed,
			Message: "relay unreachable",
			Data:    err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var relayErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&relayErr)
		if relayErr.Error == "" {
			relayErr.Error = "relay rejected the message"
		}
		c.log.Warn("sms send failed", map[string]any{
			"status": resp.StatusCode,
			"error":  relayErr.Error,
		})
		return &types.Error{Code: types.ErrNotificationFailed, Message: relayErr.Error}
	}

	return nil
}
