package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ERC-20 surface the dashboard needs: balance reads and the
// transfer used by the withdraw flow.
const erc20JSON = `[
  {"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
  {"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var erc20ABI = mustABI(erc20JSON)

func mustABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic("wallet: bad erc20 abi: " + err.Error())
	}
	return parsed
}
