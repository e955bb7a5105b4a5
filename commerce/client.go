// Package commerce is a thin authenticated client for the hosted
// commerce API. It owns no state beyond the merchant credential: the
// remote service is the source of truth for every charge and checkout.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/metrics"
	"github.com/onchaincommerce/onchaincommerce/types"
	"github.com/onchaincommerce/onchaincommerce/utils"
)

const (
	// DefaultBaseURL is the hosted commerce API endpoint.
	DefaultBaseURL = "https://api.commerce.coinbase.com"

	apiVersion = "2018-03-22"

	headerAPIKey  = "X-CC-Api-Key"
	headerVersion = "X-CC-Version"
)

// Client issues authenticated requests against the commerce API. The
// API key is passed through opaquely; no local validation of its
// format is attempted.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
	rec        metrics.Recorder
}

// New builds a client for the given merchant API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.NoopLogger{},
		rec:        metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateChargeRequest is the payload for a new fixed-price charge.
type CreateChargeRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description" validate:"required"`
	PricingType string            `json:"pricing_type" validate:"required,oneof=fixed_price no_price"`
	LocalPrice  types.Money       `json:"local_price"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CreateCheckoutRequest is the payload for a new reusable checkout.
type CreateCheckoutRequest struct {
	Name          string      `json:"name" validate:"required"`
	Description   string      `json:"description" validate:"required"`
	PricingType   string      `json:"pricing_type" validate:"required,oneof=fixed_price no_price"`
	LocalPrice    types.Money `json:"local_price"`
	RequestedInfo []string    `json:"requested_info,omitempty"`
}

// ListOptions narrows a charge listing to a date window. Zero values
// are omitted from the query.
type ListOptions struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// CreateCharge creates a fixed-price charge and returns the remote
// read model, including its hosted payment link.
func (c *Client) CreateCharge(ctx context.Context, req CreateChargeRequest) (*types.Charge, error) {
	if err := validateRequest(&req, req.PricingType, req.LocalPrice); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/charges", "create_charge", req)
	if err != nil {
		return nil, err
	}

	return parseDataEnvelope(body, utils.ParseCharge)
}

// CreateCheckout creates a reusable checkout template.
func (c *Client) CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*types.Checkout, error) {
	if err := validateRequest(&req, req.PricingType, req.LocalPrice); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/checkouts", "create_checkout", req)
	if err != nil {
		return nil, err
	}

	return parseDataEnvelope(body, utils.ParseCheckout)
}

// GetCharge fetches the current read model for one charge.
func (c *Client) GetCharge(ctx context.Context, chargeID string) (*types.Charge, error) {
	if chargeID == "" {
		return nil, &types.Error{Code: types.ErrValidation, Message: "charge id is required"}
	}

	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/charges/"+url.PathEscape(chargeID), "get_charge", nil)
	if err != nil {
		return nil, err
	}

	return parseDataEnvelope(body, utils.ParseCharge)
}

// ListCharges fetches every page of the charge listing and returns one
// flattened, order-preserving sequence. Callers never see partial
// pages: the cursor is followed until the API reports no next page.
func (c *Client) ListCharges(ctx context.Context, opts ListOptions) ([]types.Charge, error) {
	next := c.baseURL + "/charges" + listQuery(opts)

	var all []types.Charge
	for next != "" {
		body, err := c.do(ctx, http.MethodGet, next, "list_charges", nil)
		if err != nil {
			return nil, err
		}

		page, err := utils.ParseChargeList(body)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Data...)
		next = page.Pagination.NextURI
	}

	return all, nil
}

func listQuery(opts ListOptions) string {
	q := url.Values{}
	if !opts.StartDate.IsZero() {
		q.Set("start_date", opts.StartDate.UTC().Format(time.RFC3339))
	}
	if !opts.EndDate.IsZero() {
		q.Set("end_date", opts.EndDate.UTC().Format(time.RFC3339))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// do issues one request and maps non-2xx responses to APIError.
func (c *Client) do(ctx context.Context, method, rawURL, operation string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", operation, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerVersion, apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.rec.ObserveLatency(operation, time.Since(start), map[string]string{"component": "commerce"})
	if err != nil {
		c.rec.IncCounter("request_error", map[string]string{"component": "commerce"})
		return nil, fmt.Errorf("commerce %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.rec.IncCounter("api_error", map[string]string{"component": "commerce"})
		apiErr := &types.APIError{StatusCode: resp.StatusCode, Message: remoteMessage(body)}
		c.log.Warn("commerce request failed", map[string]any{
			"operation": operation,
			"status":    resp.StatusCode,
			"message":   apiErr.Message,
		})
		return nil, apiErr
	}

	return body, nil
}

// remoteMessage pulls the error message out of the API's error
// envelope, falling back to a generic message on unexpected shapes.
func remoteMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return "request rejected by commerce api"
}

func validateRequest(req any, pricingType string, price types.Money) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if pricingType == "no_price" {
		return nil
	}
	if _, err := utils.ValidateAmount(price.Amount); err != nil {
		return &types.Error{Code: types.ErrValidation, Message: err.Error()}
	}
	if price.Currency == "" {
		return &types.Error{Code: types.ErrValidation, Message: "currency is required"}
	}
	return nil
}

// parseDataEnvelope unwraps the {"data": ...} envelope and hands the
// inner document to the typed parse boundary.
func parseDataEnvelope[T any](body []byte, parse func([]byte) (*T, error)) (*T, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: "commerce response missing data envelope",
		}
	}
	return parse(envelope.Data)
}
