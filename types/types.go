package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeStatus is a status reported on a charge timeline by the
// commerce API.
type ChargeStatus string

const (
	StatusNew        ChargeStatus = "NEW"
	StatusPending    ChargeStatus = "PENDING"
	StatusCompleted  ChargeStatus = "COMPLETED"
	StatusExpired    ChargeStatus = "EXPIRED"
	StatusCanceled   ChargeStatus = "CANCELED"
	StatusSigned     ChargeStatus = "SIGNED"
	StatusUnresolved ChargeStatus = "UNRESOLVED"
)

// IsTerminal reports whether no further timeline transitions can occur.
// UNRESOLVED is not terminal: the API may still settle the charge.
func (s ChargeStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusCanceled
}

// StatusAll is the identity value accepted by ledger status filters.
const StatusAll = "all"

// TimelineEntry is one append-only status transition on a charge.
type TimelineEntry struct {
	Status ChargeStatus `json:"status" validate:"required"`
	Time   time.Time    `json:"time"`
}

// Money is a fiat amount as the commerce API reports it: a decimal
// string plus an ISO currency code.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Decimal parses the amount. Malformed or empty amounts yield zero
// rather than an error so one bad record cannot poison an
// aggregation pass.
func (m Money) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Pricing holds the price views the API returns for a charge.
type Pricing struct {
	Local Money `json:"local"`
}

// Payment is a detected blockchain payment against a charge.
type Payment struct {
	Network       string    `json:"network"`
	TransactionID string    `json:"transaction_id"`
	DetectedAt    time.Time `json:"detected_at,omitempty"`
	Value         Pricing   `json:"value,omitempty"`
}

// Charge is the remote-owned payment request read model. The local
// application never mutates one; it only creates new charges and
// re-reads existing ones.
type Charge struct {
	ID          string            `json:"id" validate:"required"`
	Code        string            `json:"code"`
	Resource    string            `json:"resource,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	HostedURL   string            `json:"hosted_url,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Pricing     Pricing           `json:"pricing"`
	Payments    []Payment         `json:"payments"`
	Timeline    []TimelineEntry   `json:"timeline" validate:"dive"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CurrentStatus is the status of the last timeline entry. A charge
// with no timeline yet is NEW.
func (c *Charge) CurrentStatus() ChargeStatus {
	if len(c.Timeline) == 0 {
		return StatusNew
	}
	return c.Timeline[len(c.Timeline)-1].Status
}

// IsTerminal reports whether the charge can still transition.
func (c *Charge) IsTerminal() bool {
	return c.CurrentStatus().IsTerminal()
}

// CompletedAt returns the timestamp of the first COMPLETED timeline
// entry, if any.
func (c *Charge) CompletedAt() (time.Time, bool) {
	for _, entry := range c.Timeline {
		if entry.Status == StatusCompleted {
			return entry.Time, true
		}
	}
	return time.Time{}, false
}

// FirstPayment returns the first detected blockchain payment, if any.
func (c *Charge) FirstPayment() (Payment, bool) {
	if len(c.Payments) == 0 {
		return Payment{}, false
	}
	return c.Payments[0], true
}

// Checkout is the remote-owned reusable payment template. Unlike a
// Charge it has no lifecycle of its own; its hosted link may be paid
// many times by different payers.
type Checkout struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PricingType   string   `json:"pricing_type,omitempty"`
	LocalPrice    Money    `json:"local_price,omitempty"`
	RequestedInfo []string `json:"requested_info,omitempty"`
}

// HostedURL builds the durable hosted checkout link.
func (ck *Checkout) HostedURL() string {
	return "https://commerce.coinbase.com/checkout/" + ck.ID
}

// Pagination is the cursor envelope the commerce API wraps list
// responses in.
type Pagination struct {
	Order       string   `json:"order,omitempty"`
	Total       int      `json:"total,omitempty"`
	NextURI     string   `json:"next_uri"`
	PreviousURI string   `json:"previous_uri,omitempty"`
	CursorRange []string `json:"cursor_range,omitempty"`
}

// ChargeList is one page of charges plus its pagination cursor.
type ChargeList struct {
	Pagination Pagination `json:"pagination"`
	Data       []Charge   `json:"data" validate:"dive"`
}

// Config carries the tunables shared across dashboard components.
type Config struct {
	// CommerceBaseURL overrides the commerce API endpoint.
	CommerceBaseURL string `json:"commerceBaseUrl,omitempty"`

	// RelayBaseURL is the SMS relay the notification dispatcher calls.
	RelayBaseURL string `json:"relayBaseUrl,omitempty"`

	// PollInterval is the charge tracker cadence.
	PollInterval time.Duration `json:"pollInterval,omitempty"`

	// DefaultTimeout bounds individual outbound HTTP calls.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// TargetChainID is the hex chain id wallets are switched to.
	TargetChainID string `json:"targetChainId,omitempty"`

	// TokenAddress and TokenDecimals identify the settlement token
	// used for balance and withdraw operations.
	TokenAddress  string `json:"tokenAddress,omitempty"`
	TokenDecimals int32  `json:"tokenDecimals,omitempty"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`
}
