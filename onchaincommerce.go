// Package onchaincommerce is a merchant payment dashboard toolkit: it
// sequences wallet connection and API-key authentication, then exposes
// charge/checkout creation, lifecycle tracking, payment history,
// revenue analytics and SMS payment-link delivery on top of the hosted
// commerce API.
package onchaincommerce

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/onchaincommerce/onchaincommerce/commerce"
	"github.com/onchaincommerce/onchaincommerce/ledger"
	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/metrics"
	"github.com/onchaincommerce/onchaincommerce/notify"
	"github.com/onchaincommerce/onchaincommerce/store"
	"github.com/onchaincommerce/onchaincommerce/tracker"
	"github.com/onchaincommerce/onchaincommerce/types"
	"github.com/onchaincommerce/onchaincommerce/wallet"
)

// State is the dashboard view state.
type State string

const (
	StateDisconnected       State = "disconnected"
	StateAwaitingCredential State = "awaiting_credential"
	StateAuthenticated      State = "authenticated"
)

// Dashboard is the top-level controller. It owns the session/config
// lifecycle and wires user actions to the underlying components; no
// state is entered before its precondition succeeds.
type Dashboard struct {
	cfg   *types.Config
	store *store.Store
	log   logger.Logger
	rec   metrics.Recorder

	wallet   *wallet.Manager
	notifier *notify.Client

	mu       sync.Mutex
	state    State
	epoch    uint64
	commerce *commerce.Client
	tracker  *tracker.Tracker
}

// New creates a Dashboard around the given config and local store.
func New(cfg *types.Config, st *store.Store, opts ...Option) *Dashboard {
	if cfg == nil {
		cfg = &types.Config{}
	}
	applyConfigDefaults(cfg)

	d := &Dashboard{
		cfg:   cfg,
		store: st,
		log:   logger.NoopLogger{},
		rec:   metrics.NoopRecorder{},
		state: StateDisconnected,
	}
	for _, opt := range opts {
		opt(d)
	}

	if _, noop := d.log.(logger.NoopLogger); noop && cfg.LogLevel != "" {
		d.log = logger.NewZapLogger(cfg.LogLevel)
	}
	if _, noop := d.rec.(metrics.NoopRecorder); noop && cfg.EnableMetrics {
		d.rec = metrics.NewPrometheusRecorder()
	}

	d.wallet = wallet.NewManager(
		wallet.WithChainID(cfg.TargetChainID),
		wallet.WithToken(cfg.TokenAddress, cfg.TokenDecimals),
		wallet.WithLogger(d.log),
	)
	d.notifier = notify.New(cfg.RelayBaseURL, notify.WithLogger(d.log))

	return d
}

// NewWithDefaults creates a Dashboard with default configuration.
func NewWithDefaults(st *store.Store) *Dashboard {
	return New(&types.Config{
		DefaultTimeout: 30 * time.Second,
		PollInterval:   tracker.DefaultInterval,
		LogLevel:       "info",
		EnableMetrics:  false,
	}, st)
}

func applyConfigDefaults(cfg *types.Config) {
	if cfg.CommerceBaseURL == "" {
		cfg.CommerceBaseURL = commerce.DefaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = tracker.DefaultInterval
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}
	if cfg.TargetChainID == "" {
		cfg.TargetChainID = wallet.DefaultChainID
	}
	if cfg.TokenAddress == "" {
		cfg.TokenAddress = wallet.DefaultTokenAddress
		cfg.TokenDecimals = wallet.DefaultTokenDecimals
	}
}

// State returns the current view state.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ConnectWallet establishes the wallet session. On success the
// dashboard moves to AwaitingCredential, or straight to Authenticated
// when a credential was previously persisted.
func (d *Dashboard) ConnectWallet(ctx context.Context, provider wallet.Provider) (State, error) {
	d.mu.Lock()
	if d.state != StateDisconnected {
		current := d.state
		d.mu.Unlock()
		return current, &types.Error{Code: types.ErrInvalidState, Message: "wallet already connected"}
	}
	epoch := d.epoch
	d.mu.Unlock()

	session, err := d.wallet.Connect(ctx, provider)
	if err != nil {
		return StateDisconnected, err
	}

	// The handshake ran unlocked; a Logout (or a competing connect)
	// that landed in the meantime wins over this late success.
	d.mu.Lock()
	if d.state != StateDisconnected || d.epoch != epoch {
		current := d.state
		d.mu.Unlock()
		d.wallet.Disconnect()
		return current, &types.Error{Code: types.ErrInvalidState, Message: "session was reset during connect"}
	}
	if key, ok := d.store.APIKey(); ok {
		d.authenticateLocked(key)
	} else {
		d.state = StateAwaitingCredential
	}
	state := d.state
	d.mu.Unlock()

	d.log.Info("wallet session established", map[string]any{
		"address": session.Address.Hex(),
		"state":   string(state),
	})
	return state, nil
}

// SubmitAPIKey persists the merchant credential and completes
// authentication. The key is passed through opaquely; a bad key
// surfaces as an APIError on first use, not here.
func (d *Dashboard) SubmitAPIKey(key string) (State, error) {
	if key == "" {
		return d.State(), &types.Error{Code: types.ErrValidation, Message: "api key is required"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateAwaitingCredential {
		return d.state, &types.Error{Code: types.ErrInvalidState, Message: "not awaiting credential"}
	}
	if err := d.store.SetAPIKey(key); err != nil {
		return d.state, err
	}

	d.authenticateLocked(key)
	return d.state, nil
}

func (d *Dashboard) authenticateLocked(key string) {
	d.commerce = commerce.New(key,
		commerce.WithBaseURL(d.cfg.CommerceBaseURL),
		commerce.WithTimeout(d.cfg.DefaultTimeout),
		commerce.WithLogger(d.log),
		commerce.WithMetrics(d.rec),
	)
	d.tracker = tracker.New(d.commerce,
		tracker.WithInterval(d.cfg.PollInterval),
		tracker.WithLogger(d.log),
		tracker.WithMetrics(d.rec),
	)
	d.state = StateAuthenticated
}

// Logout clears the persisted credential and every piece of dependent
// local state in one step, then tears down the wallet session. The
// dashboard is observably logged out even if the provider's own
// disconnect hook fails.
func (d *Dashboard) Logout() error {
	d.mu.Lock()
	err := d.store.Clear()
	d.commerce = nil
	d.tracker = nil
	d.state = StateDisconnected
	d.epoch++
	d.mu.Unlock()

	d.wallet.Disconnect()
	return err
}

func (d *Dashboard) authenticated() (*commerce.Client, *tracker.Tracker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateAuthenticated {
		return nil, nil, &types.Error{Code: types.ErrInvalidState, Message: "not authenticated"}
	}
	return d.commerce, d.tracker, nil
}

// CreateCharge creates a fixed-price charge.
func (d *Dashboard) CreateCharge(ctx context.Context, req commerce.CreateChargeRequest) (*types.Charge, error) {
	client, _, err := d.authenticated()
	if err != nil {
		return nil, err
	}
	return client.CreateCharge(ctx, req)
}

// CreateCheckout creates a reusable checkout template.
func (d *Dashboard) CreateCheckout(ctx context.Context, req commerce.CreateCheckoutRequest) (*types.Checkout, error) {
	client, _, err := d.authenticated()
	if err != nil {
		return nil, err
	}
	return client.CreateCheckout(ctx, req)
}

// WatchCharge polls the charge until it reaches a terminal status and
// delivers the result to fn. The returned watch must be cancelled
// when the owning view goes away.
func (d *Dashboard) WatchCharge(ctx context.Context, chargeID string, fn func(tracker.Result)) (*tracker.Watch, error) {
	_, tr, err := d.authenticated()
	if err != nil {
		return nil, err
	}
	return tr.Track(ctx, chargeID, fn), nil
}

// PaymentHistory returns every charge, fully depaginated.
func (d *Dashboard) PaymentHistory(ctx context.Context) ([]types.Charge, error) {
	client, _, err := d.authenticated()
	if err != nil {
		return nil, err
	}
	return client.ListCharges(ctx, commerce.ListOptions{})
}

// Revenue fetches the timeframe's charges and buckets completed
// revenue over time.
func (d *Dashboard) Revenue(ctx context.Context, tf ledger.Timeframe) ([]ledger.Bucket, error) {
	charges, now, err := d.windowCharges(ctx, tf)
	if err != nil {
		return nil, err
	}
	return ledger.RevenueSeries(charges, tf, now), nil
}

// Summary computes the timeframe's headline metrics.
func (d *Dashboard) Summary(ctx context.Context, tf ledger.Timeframe) (ledger.Summary, error) {
	charges, now, err := d.windowCharges(ctx, tf)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(charges, tf, now), nil
}

// NetworkDistribution counts completed charges by payment network.
func (d *Dashboard) NetworkDistribution(ctx context.Context, tf ledger.Timeframe) (map[string]int, error) {
	charges, now, err := d.windowCharges(ctx, tf)
	if err != nil {
		return nil, err
	}
	return ledger.NetworkDistribution(charges, tf, now), nil
}

func (d *Dashboard) windowCharges(ctx context.Context, tf ledger.Timeframe) ([]types.Charge, time.Time, error) {
	client, _, err := d.authenticated()
	if err != nil {
		return nil, time.Time{}, err
	}

	now := time.Now()
	charges, err := client.ListCharges(ctx, commerce.ListOptions{
		StartDate: tf.WindowStart(now),
		EndDate:   now,
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return charges, now, nil
}

// SendPaymentLink texts a payment link to the customer through the
// relay. Safe to re-invoke on failure.
func (d *Dashboard) SendPaymentLink(ctx context.Context, destination, link string) error {
	if _, _, err := d.authenticated(); err != nil {
		return err
	}
	return d.notifier.SendPaymentLink(ctx, destination, link)
}

// TokenBalance reads the connected wallet's settlement-token balance.
func (d *Dashboard) TokenBalance(ctx context.Context) (decimal.Decimal, error) {
	return d.wallet.TokenBalance(ctx)
}

// Withdraw transfers settlement tokens from the connected wallet and
// returns the transaction hash.
func (d *Dashboard) Withdraw(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
	return d.wallet.TransferToken(ctx, to, amount)
}

// SignMessage requests a personal_sign signature from the wallet.
func (d *Dashboard) SignMessage(ctx context.Context, msg string) (string, error) {
	return d.wallet.SignMessage(ctx, msg)
}

// SendTransaction submits a native-value transfer through the wallet.
func (d *Dashboard) SendTransaction(ctx context.Context, to string, valueWei *big.Int) (string, error) {
	return d.wallet.SendTransaction(ctx, to, valueWei)
}

// Subscriptions returns the locally cached subscription list.
func (d *Dashboard) Subscriptions() ([]store.Subscription, error) {
	return d.store.Subscriptions()
}

// SaveSubscriptions replaces the locally cached subscription list.
func (d *Dashboard) SaveSubscriptions(subs []store.Subscription) error {
	return d.store.SetSubscriptions(subs)
}

// Version information.
const Version = "1.0.0"
