package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// PayeeFunc adapts a function to the types.Payee interface.
type PayeeFunc func(ctx context.Context, to common.Address, amount *big.Int) error

// Pay calls f(ctx, to, amount).
func (f PayeeFunc) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	return f(ctx, to, amount)
}

// AcceptAll is a payee that accepts every transfer.
var AcceptAll types.Payee = PayeeFunc(func(context.Context, common.Address, *big.Int) error {
	return nil
})

// Withdraw transfers the entire retained balance to the owner and resets
// it to zero. Returns ErrNotOwner, before touching any funds, when caller
// is not the owner. The withdrawal is committed to the store before the
// payee is called: a store failure leaves the balance unchanged and pays
// nothing, and a rejected payment reverts the recorded withdrawal.
func (l *Ledger) Withdraw(ctx context.Context, caller common.Address) (*types.WithdrawReceipt, error) {
	l.mu.Lock()
	receipt, err := l.withdrawLocked(ctx, caller)
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("withdraw reverted", "caller", caller.Hex(), "error", err)
		return nil, err
	}

	l.logger.Info("withdraw committed", "owner", receipt.Owner.Hex(), "amount", receipt.Amount)
	l.listeners.emitWithdraw(ctx, *receipt)
	return receipt, nil
}

func (l *Ledger) withdrawLocked(ctx context.Context, caller common.Address) (*types.WithdrawReceipt, error) {
	if caller != l.info.Owner {
		return nil, types.ErrNotOwner
	}

	snapshot := l.journal.length()
	amount := new(big.Int).Set(l.balance)
	l.setBalance(new(big.Int))

	receipt := &types.WithdrawReceipt{
		Owner:  l.info.Owner,
		Amount: amount,
		Event: types.Event{
			EventID:   l.newID(),
			Seq:       l.nextEventSeq(),
			Kind:      types.EventWithdraw,
			Account:   l.info.Owner,
			Amount:    new(big.Int).Set(amount),
			CreatedAt: l.now().UTC(),
		},
	}

	if err := ctx.Err(); err != nil {
		l.journal.revert(l, snapshot)
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	if err := l.store.CommitWithdraw(ctx, *receipt); err != nil {
		l.journal.revert(l, snapshot)
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	if err := l.payee.Pay(ctx, l.info.Owner, new(big.Int).Set(amount)); err != nil {
		err = fmt.Errorf("withdraw: %w: %w", types.ErrPaymentRejected, err)
		if rerr := l.store.RevertWithdraw(context.WithoutCancel(ctx), *receipt); rerr != nil {
			// The store still records the withdrawal; memory follows it.
			l.journal.reset()
			l.logger.Error("withdraw recorded but not paid",
				"owner", l.info.Owner.Hex(), "amount", amount, "seq", receipt.Event.Seq, "error", rerr)
			return nil, errors.Join(err, fmt.Errorf("reverting withdrawal: %w", rerr))
		}
		l.journal.revert(l, snapshot)
		return nil, err
	}

	l.journal.reset()
	return receipt, nil
}
