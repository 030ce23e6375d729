package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MintRequest is the input of a batch mint. BaseURIs[i] becomes the base
// URI of the ith newly assigned id.
type MintRequest struct {
	Quantity uint64
	BaseURIs []string
	Payment  *big.Int // Value sent with the mint, in wei.
}

// MintReceipt describes a committed mint. Stores persist it as one unit.
type MintReceipt struct {
	Minter common.Address
	Tokens []Token  // Newly minted tokens in id order.
	Paid   *big.Int // Full payment retained by the ledger.
	Event  Event    // The single Mint event for the batch.
}

// TokenIDs returns the ids assigned by the mint, ascending.
func (r MintReceipt) TokenIDs() []uint64 {
	ids := make([]uint64, len(r.Tokens))
	for i, t := range r.Tokens {
		ids[i] = t.TokenID
	}
	return ids
}

// WithdrawReceipt describes a committed withdrawal.
type WithdrawReceipt struct {
	Owner  common.Address
	Amount *big.Int // Amount transferred to Owner, in wei.
	Event  Event
}
