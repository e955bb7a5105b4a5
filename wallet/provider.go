package wallet

import (
	"context"
	"encoding/json"
)

// Provider is the injected wallet bridge: an EIP-1193 style request
// pipe into the user's wallet. The dashboard only shapes request
// payloads; signing, broadcast and chain RPC all happen on the other
// side of this interface.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// Disconnecter is implemented by providers that expose an explicit
// disconnect hook. Purely best-effort; most injected providers have
// none.
type Disconnecter interface {
	Disconnect() error
}
