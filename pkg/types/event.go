package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event kinds.
const (
	EventMint     = "Mint"
	EventWithdraw = "Withdraw"
)

// Event signatures, hashed into topics the same way a contract log is.
const (
	mintSignature     = "Mint(uint256,address)"
	withdrawSignature = "Withdraw(uint256,address)"
)

// Event topics.
var (
	MintTopic     = crypto.Keccak256Hash([]byte(mintSignature))
	WithdrawTopic = crypto.Keccak256Hash([]byte(withdrawSignature))
)

// validEventKinds maps each kind to its topic.
var validEventKinds = map[string]common.Hash{
	EventMint:     MintTopic,
	EventWithdraw: WithdrawTopic,
}

// Event is the notification recorded for one committed mint or withdrawal.
// A batch mint produces a single event.
type Event struct {
	EventID      string         // UUID v7.
	Seq          uint64         // Position in the ledger's event log, starting at 1.
	Kind         string         // EventMint or EventWithdraw.
	Account      common.Address // Minter for Mint, owner for Withdraw.
	Quantity     uint64         // Tokens minted; zero for Withdraw.
	FirstTokenID uint64         // First id assigned by a Mint; zero for Withdraw.
	Amount       *big.Int       // Payment received or amount transferred, in wei.
	CreatedAt    time.Time
}

// Topic returns the keccak256 hash of the event's signature.
// Returns the zero hash for unknown kinds.
func (e Event) Topic() common.Hash {
	return validEventKinds[e.Kind]
}

// ValidEventKind reports whether kind names a known event.
func ValidEventKind(kind string) bool {
	_, ok := validEventKinds[kind]
	return ok
}

// EventFilter narrows an event query. Zero values match everything.
type EventFilter struct {
	Kind    string
	Account *common.Address
}

// Match reports whether e passes the filter.
func (f EventFilter) Match(e Event) bool {
	if f.Kind != "" && f.Kind != e.Kind {
		return false
	}
	if f.Account != nil && *f.Account != e.Account {
		return false
	}
	return true
}
