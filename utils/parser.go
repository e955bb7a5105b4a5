package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/onchaincommerce/onchaincommerce/types"
)

var validate = validator.New()

// ParseCharge parses and validates a Charge from remote JSON. Remote
// payloads are never trusted shape-wise; unexpected shapes are rejected
// here instead of being accessed optimistically downstream.
func ParseCharge(data []byte) (*types.Charge, error) {
	var charge types.Charge

	if err := json.Unmarshal(data, &charge); err != nil {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: fmt.Sprintf("failed to parse charge: %v", err),
		}
	}

	if err := validate.Struct(&charge); err != nil {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: fmt.Sprintf("charge validation failed: %v", err),
		}
	}

	return &charge, nil
}

// ParseChargeList parses one page of the charges list envelope.
func ParseChargeList(data []byte) (*types.ChargeList, error) {
	var page types.ChargeList

	if err := json.Unmarshal(data, &page); err != nil {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: fmt.Sprintf("failed to parse charge list: %v", err),
		}
	}

	if err := validate.Struct(&page); err != nil {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: fmt.Sprintf("charge list validation failed: %v", err),
		}
	}

	return &page, nil
}

// ParseCheckout parses and validates a Checkout from remote JSON.
func ParseCheckout(data []byte) (*types.Checkout, error) {
	var checkout types.Checkout

	if err := json.Unmarshal(data, &checkout); err != nil {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: fmt.Sprintf("failed to parse checkout: %v", err),
		}
	}

	if err := validate.Struct(&checkout); err != nil {
		return nil, &types.Error{
			Code:    types.ErrMalformedPayload,
			Message: fmt.Sprintf("checkout validation failed: %v", err),
		}
	}

	return &checkout, nil
}

// ValidateStruct applies validator tags to an arbitrary request struct.
// Used by clients to reject malformed input before any network call.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return &types.Error{
			Code:    types.ErrValidation,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}
	return nil
}
