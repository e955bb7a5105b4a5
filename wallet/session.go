// Package wallet manages the connected wallet session over an
// injected provider bridge: connect with chain switching, best-effort
// disconnect, token balance reads and the transfer actions the
// dashboard exposes.
package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/types"
)

// Defaults: USDC on Base mainnet.
const (
	DefaultChainID       = "0x2105"
	DefaultTokenAddress  = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	DefaultTokenDecimals = int32(6)
)

// Session is the ephemeral connected-wallet state. It is never
// persisted; a fresh session is derived from the provider on every
// connect.
type Session struct {
	Address common.Address
	ChainID string
}

// Manager owns the session lifecycle. One session at a time; Connect
// replaces any previous one.
type Manager struct {
	chainID       string
	token         common.Address
	tokenDecimals int32
	log           logger.Logger

	mu       sync.Mutex
	provider Provider
	session  *Session
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		chainID:       DefaultChainID,
		token:         common.HexToAddress(DefaultTokenAddress),
		tokenDecimals: DefaultTokenDecimals,
		log:           logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type switchChainParam struct {
	ChainID string `json:"chainId"`
}

type callParam struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Connect asks the wallet to switch to the target chain, then
// requests the active account. The session exists only after both
// succeed.
func (m *Manager) Connect(ctx context.Context, provider Provider) (*Session, error) {
	if _, err := provider.Request(ctx, "wallet_switchEthereumChain", switchChainParam{ChainID: m.chainID}); err != nil {
		return nil, &types.Error{
			Code:    types.ErrChainSwitchFailed,
			Message: "wallet does not support chain " + m.chainID,
			Data:    err.Error(),
		}
	}

	raw, err := provider.Request(ctx, "eth_requestAccounts")
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrWalletRejected,
			Message: "wallet connection was declined",
			Data:    err.Error(),
		}
	}

	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil || len(accounts) == 0 {
		return nil, &types.Error{
			Code:    types.ErrWalletRejected,
			Message: "wallet returned no authorized account",
		}
	}

	session := &Session{
		Address: common.HexToAddress(accounts[0]),
		ChainID: m.chainID,
	}

	m.mu.Lock()
	m.provider = provider
	m.session = session
	m.mu.Unlock()

	m.log.Info("wallet connected", map[string]any{
		"address": session.Address.Hex(),
		"chain":   session.ChainID,
	})
	return session, nil
}

// Session returns the current session, if connected.
func (m *Manager) Session() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.session != nil
}

// Disconnect clears the session unconditionally. The provider's own
// disconnect hook, when present, is invoked best-effort: its failure
// is logged and otherwise invisible to the caller.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	provider := m.provider
	m.provider = nil
	m.session = nil
	m.mu.Unlock()

	if d, ok := provider.(Disconnecter); ok {
		if err := d.Disconnect(); err != nil {
			m.log.Warn("provider disconnect failed", map[string]any{"error": err.Error()})
		}
	}
}

func (m *Manager) active() (Provider, *Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.provider == nil {
		return nil, nil, &types.Error{
			Code:    types.ErrNoWalletSession,
			Message: "no wallet connected",
		}
	}
	return m.provider, m.session, nil
}

// TokenBalance reads the session address's ERC-20 balance through the
// provider and scales it by the token's decimals. An RPC failure is
// BalanceUnavailable, distinct from a legitimate zero balance.
func (m *Manager) TokenBalance(ctx context.Context) (decimal.Decimal, error) {
	provider, session, err := m.active()
	if err != nil {
		return decimal.Zero, err
	}

	data, err := erc20ABI.Pack("balanceOf", session.Address)
	if err != nil {
		return decimal.Zero, &types.Error{Code: types.ErrBalanceUnavailable, Message: err.Error()}
	}

	raw, err := provider.Request(ctx, "eth_call", callParam{To: m.token.Hex(), Data: hexutil.Encode(data)}, "latest")
	if err != nil {
		return decimal.Zero, &types.Error{
			Code:    types.ErrBalanceUnavailable,
			Message: "balance query failed",
			Data:    err.Error(),
		}
	}

	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return decimal.Zero, &types.Error{Code: types.ErrBalanceUnavailable, Message: "malformed balance response"}
	}

	returned, err := hexutil.Decode(result)
	if err != nil {
		return decimal.Zero, &types.Error{Code: types.ErrBalanceUnavailable, Message: "malformed balance response"}
	}

	units := new(big.Int).SetBytes(returned)
	return decimal.NewFromBigInt(units, -m.tokenDecimals), nil
}

// SignMessage asks the wallet for a personal_sign signature over msg.
func (m *Manager) SignMessage(ctx context.Context, msg string) (string, error) {
	provider, session, err := m.active()
	if err != nil {
		return "", err
	}

	raw, err := provider.Request(ctx, "personal_sign", msg, session.Address.Hex())
	if err != nil {
		return "", &types.Error{
			Code:    types.ErrWalletRejected,
			Message: "signature request was declined",
			Data:    err.Error(),
		}
	}

	var signature string
	if err := json.Unmarshal(raw, &signature); err != nil {
		return "", &types.Error{Code: types.ErrWalletRejected, Message: "malformed signature response"}
	}
	return signature, nil
}

type txParam struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
}

// SendTransaction submits a native-value transfer through the wallet
// and returns the transaction hash.
func (m *Manager) SendTransaction(ctx context.Context, to string, valueWei *big.Int) (string, error) {
	provider, session, err := m.active()
	if err != nil {
		return "", err
	}

	return m.submit(ctx, provider, txParam{
		From:  session.Address.Hex(),
		To:    to,
		Value: hexutil.EncodeBig(valueWei),
	})
}

// TransferToken submits an ERC-20 transfer of the configured token,
// scaling the decimal amount to token units. Used by the withdraw
// flow.
func (m *Manager) TransferToken(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
	provider, session, err := m.active()
	if err != nil {
		return "", err
	}

	units := amount.Shift(m.tokenDecimals).BigInt()
	data, err := erc20ABI.Pack("transfer", common.HexToAddress(to), units)
	if err != nil {
		return "", &types.Error{Code: types.ErrValidation, Message: err.Error()}
	}

	return m.submit(ctx, provider, txParam{
		From: session.Address.Hex(),
		To:   m.token.Hex(),
		Data: hexutil.Encode(data),
	})
}

func (m *Manager) submit(ctx context.Context, provider Provider, tx txParam) (string, error) {
	raw, err := provider.Request(ctx, "eth_sendTransaction", tx)
	if err != nil {
		return "", &types.Error{
			Code:    types.ErrWalletRejected,
			Message: "transaction was declined",
			Data:    err.Error(),
		}
	}

	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return "", &types.Error{Code: types.ErrWalletRejected, Message: "malformed transaction response"}
	}

	m.log.Info("transaction submitted", map[string]any{"tx": hash})
	return hash, nil
}
