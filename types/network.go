package types

// Network names a blockchain network as the commerce API reports it on
// a payment record.
type Network string

const (
	NetworkEthereum Network = "ethereum"
	NetworkBase     Network = "base"
	NetworkPolygon  Network = "polygon"
)

func (n Network) String() string {
	return string(n)
}

// ExplorerTxURL builds a block-explorer link for a transaction id.
// Ethereum payments link to Etherscan; everything else the dashboard
// accepts settles on Base and links to Basescan.
func (n Network) ExplorerTxURL(txID string) string {
	if n == NetworkEthereum {
		return "https://etherscan.io/tx/" + txID
	}
	return "https://basescan.org/tx/" + txID
}
