package utils

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// E.164: plus sign, then 7 to 15 digits with no leading zero.
var phoneRE = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidateAmount checks that an amount string is a valid non-negative
// decimal and returns it parsed.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidatePhoneNumber checks that a destination number is E.164 shaped.
func ValidatePhoneNumber(number string) error {
	if !phoneRE.MatchString(number) {
		return fmt.Errorf("invalid phone number %q: expected E.164 format", number)
	}
	return nil
}

// TruncateAddress shortens a wallet address for display: 0x1234...abcd.
func TruncateAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
