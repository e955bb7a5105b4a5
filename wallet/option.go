package wallet

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/onchaincommerce/onchaincommerce/logger"
)

type Option func(*Manager)

// WithChainID sets the hex chain id wallets are switched to on
// connect.
func WithChainID(chainID string) Option {
	return func(m *Manager) {
		if chainID != "" {
			m.chainID = chainID
		}
	}
}

// WithToken sets the settlement token contract and its decimals.
func WithToken(address string, decimals int32) Option {
	return func(m *Manager) {
		if address != "" {
			m.token = common.HexToAddress(address)
		}
		if decimals > 0 {
			m.tokenDecimals = decimals
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}
