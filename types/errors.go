package types

import "fmt"

// Error is the library error carrying a stable machine code alongside
// the human message.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes.
const (
	ErrWalletRejected     = "WALLET_REJECTED"
	ErrChainSwitchFailed  = "CHAIN_SWITCH_FAILED"
	ErrNoWalletSession    = "NO_WALLET_SESSION"
	ErrBalanceUnavailable = "BALANCE_UNAVAILABLE"
	ErrNotificationFailed = "NOTIFICATION_FAILED"
	ErrValidation         = "VALIDATION_ERROR"
	ErrMalformedPayload   = "MALFORMED_PAYLOAD"
	ErrInvalidState       = "INVALID_STATE"
	ErrConfig             = "CONFIG_ERROR"
)

// APIError is a non-2xx response from the commerce API, preserved as
// the remote reported it.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce api: %s (status %d)", e.Message, e.StatusCode)
}
