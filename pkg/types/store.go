package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Store persists committed ledger state. Every Commit call is
// all-or-nothing: either the whole receipt is durable or nothing is.
type Store interface {
	// Load returns the committed state.
	// Returns ErrNotDeployed if Deploy was never called.
	Load(ctx context.Context) (*Snapshot, error)

	// Deploy records the deployment parameters of a new ledger.
	// Returns ErrAlreadyDeployed if a ledger already exists.
	Deploy(ctx context.Context, info LedgerInfo) error

	// CommitMint persists the tokens, payment and event of one mint.
	CommitMint(ctx context.Context, r MintReceipt) error

	// CommitWithdraw persists the balance reset and event of one withdrawal.
	CommitWithdraw(ctx context.Context, r WithdrawReceipt) error

	// RevertWithdraw undoes the withdrawal r recorded by CommitWithdraw: the
	// amount returns to the balance and its event is removed. Returns
	// ErrWithdrawNotFound unless r is the latest recorded event.
	RevertWithdraw(ctx context.Context, r WithdrawReceipt) error

	// Events returns the recorded events matching filter, ordered by Seq.
	Events(ctx context.Context, filter EventFilter) ([]Event, error)

	// Close releases backend resources. Idempotent.
	Close() error
}

// Payee receives withdrawn funds. It is called only after the withdrawal
// is committed; a non-nil error rejects the transfer and the withdrawal is
// reverted.
type Payee interface {
	Pay(ctx context.Context, to common.Address, amount *big.Int) error
}
