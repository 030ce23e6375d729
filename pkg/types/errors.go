package types

import "errors"

// Mint errors. The messages are the revert reasons surfaced to callers.
var (
	ErrInvalidQuantity       = errors.New("must mint at least 1 token")
	ErrSupplyExceeded        = errors.New("max supply minted")
	ErrMetadataCountMismatch = errors.New("NFT metadata base URI vs mint amount count mismatch")
	ErrInsufficientPayment   = errors.New("insufficient payment")
)

// Read and access errors.
var (
	ErrTokenNotFound = errors.New("token does not exist")
	ErrNotOwner      = errors.New("caller is not the owner")
)

// Withdraw errors. A rejected payment is a counterparty failure, not bad
// caller input, so IsUserError does not report it.
var (
	ErrPaymentRejected  = errors.New("payee rejected transfer")
	ErrWithdrawNotFound = errors.New("withdrawal is not the latest recorded event")
)

// Deployment errors.
var (
	ErrNotDeployed      = errors.New("ledger is not deployed")
	ErrAlreadyDeployed  = errors.New("ledger is already deployed")
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidSymbol    = errors.New("symbol must not be empty")
	ErrInvalidMaxSupply = errors.New("max supply must be positive")
	ErrInvalidCost      = errors.New("cost per token must not be negative")
	ErrInvalidAddress   = errors.New("invalid address")
)

// IsUserError reports whether err is caused by caller input or
// authorization rather than by the storage or payment infrastructure.
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var userErrors = []error{
	ErrInvalidQuantity,
	ErrSupplyExceeded,
	ErrMetadataCountMismatch,
	ErrInsufficientPayment,
	ErrTokenNotFound,
	ErrNotOwner,
	ErrNotDeployed,
	ErrAlreadyDeployed,
	ErrInvalidName,
	ErrInvalidSymbol,
	ErrInvalidMaxSupply,
	ErrInvalidCost,
	ErrInvalidAddress,
}
