package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// Deployment defaults, matching the parameters the collection was first
// deployed with.
const (
	DefaultName      = "Mint Factory"
	DefaultSymbol    = "MF"
	DefaultMaxSupply = uint64(1000)
)

// DefaultCostPerToken returns the default price of one token: 1 ether in wei.
func DefaultCostPerToken() *big.Int {
	return big.NewInt(params.Ether)
}

// LedgerInfo holds the parameters fixed when a ledger is deployed.
// None of these fields change afterwards.
type LedgerInfo struct {
	Name         string         // Display name.
	Symbol       string         // Display symbol.
	MaxSupply    uint64         // Cap on tokens ever minted.
	CostPerToken *big.Int       // Price of one token in wei.
	Owner        common.Address // Deployer; the only address allowed to withdraw.
	DeployedAt   time.Time      // Timestamp of deployment.
}

// Validate checks that the deployment parameters are usable.
func (i LedgerInfo) Validate() error {
	if i.Name == "" {
		return ErrInvalidName
	}
	if i.Symbol == "" {
		return ErrInvalidSymbol
	}
	if i.MaxSupply == 0 {
		return ErrInvalidMaxSupply
	}
	if i.CostPerToken == nil || i.CostPerToken.Sign() < 0 {
		return ErrInvalidCost
	}
	if i.Owner == (common.Address{}) {
		return ErrInvalidAddress
	}
	return nil
}

// Clone returns a deep copy of the info.
func (i LedgerInfo) Clone() LedgerInfo {
	c := i
	if i.CostPerToken != nil {
		c.CostPerToken = new(big.Int).Set(i.CostPerToken)
	}
	return c
}

// Snapshot is the full committed state of a ledger as read back from a
// Store. Tokens are ordered by ascending id.
type Snapshot struct {
	Info       LedgerInfo
	Tokens     []Token
	Balance    *big.Int // Retained funds in wei.
	EventCount uint64   // Number of events recorded so far.
}
