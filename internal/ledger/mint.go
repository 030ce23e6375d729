package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// tokenTemplate is a token waiting for its id.
type tokenTemplate struct {
	owner    common.Address
	baseURI  string
	mintedAt time.Time
}

func (t tokenTemplate) bind(id uint64) types.Token {
	return types.Token{
		TokenID:  id,
		Owner:    t.owner,
		BaseURI:  t.baseURI,
		MintedAt: t.mintedAt,
	}
}

// MintCost returns the payment required to mint quantity tokens.
func (l *Ledger) MintCost(quantity uint64) *big.Int {
	return new(big.Int).Mul(l.info.CostPerToken, new(big.Int).SetUint64(quantity))
}

// validateMint checks the mint preconditions in order and returns the
// first one violated. The caller must hold l.mu.
func (l *Ledger) validateMint(req types.MintRequest) error {
	if req.Quantity < 1 {
		return types.ErrInvalidQuantity
	}
	// totalSupply <= maxSupply always holds, so the subtraction cannot wrap.
	if req.Quantity > l.info.MaxSupply-uint64(len(l.tokens)) {
		return types.ErrSupplyExceeded
	}
	if uint64(len(req.BaseURIs)) != req.Quantity {
		return types.ErrMetadataCountMismatch
	}
	if paymentOf(req).Cmp(l.MintCost(req.Quantity)) < 0 {
		return types.ErrInsufficientPayment
	}
	return nil
}

func paymentOf(req types.MintRequest) *big.Int {
	if req.Payment == nil {
		return new(big.Int)
	}
	return req.Payment
}

// Mint assigns the next req.Quantity ids to minter, binding BaseURIs[i] to
// the ith new id, and retains the whole payment. Overpayment is kept.
// One Mint event is recorded for the batch.
//
// Preconditions are checked in order: ErrInvalidQuantity,
// ErrSupplyExceeded, ErrMetadataCountMismatch, ErrInsufficientPayment.
// On any error, including a store failure, the ledger is left unchanged.
func (l *Ledger) Mint(ctx context.Context, minter common.Address, req types.MintRequest) (*types.MintReceipt, error) {
	l.mu.Lock()
	receipt, err := l.mintLocked(ctx, minter, req)
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("mint reverted",
			"minter", minter.Hex(),
			"quantity", req.Quantity,
			"error", err,
		)
		return nil, err
	}

	l.logger.Info("mint committed",
		"minter", minter.Hex(),
		"quantity", req.Quantity,
		"first_id", receipt.Event.FirstTokenID,
		"paid", receipt.Paid,
	)
	l.listeners.emitMint(ctx, *receipt)
	return receipt, nil
}

func (l *Ledger) mintLocked(ctx context.Context, minter common.Address, req types.MintRequest) (*types.MintReceipt, error) {
	if err := l.validateMint(req); err != nil {
		return nil, err
	}

	snapshot := l.journal.length()
	now := l.now().UTC()
	paid := new(big.Int).Set(paymentOf(req))

	tokens := make([]types.Token, 0, req.Quantity)
	for _, uri := range req.BaseURIs {
		id := l.appendToken(tokenTemplate{owner: minter, baseURI: uri, mintedAt: now})
		tokens = append(tokens, l.tokens[id-1])
	}
	l.setBalance(new(big.Int).Add(l.balance, paid))

	receipt := &types.MintReceipt{
		Minter: minter,
		Tokens: tokens,
		Paid:   paid,
		Event: types.Event{
			EventID:      l.newID(),
			Seq:          l.nextEventSeq(),
			Kind:         types.EventMint,
			Account:      minter,
			Quantity:     req.Quantity,
			FirstTokenID: tokens[0].TokenID,
			Amount:       new(big.Int).Set(paid),
			CreatedAt:    now,
		},
	}

	if err := l.commit(ctx, snapshot, func() error {
		return l.store.CommitMint(ctx, *receipt)
	}); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	return receipt, nil
}

// commit runs persist after the in-memory changes recorded since snapshot.
// If ctx is done or persist fails, the changes are reverted.
func (l *Ledger) commit(ctx context.Context, snapshot int, persist func() error) error {
	if err := ctx.Err(); err != nil {
		l.journal.revert(l, snapshot)
		return err
	}
	if err := persist(); err != nil {
		l.journal.revert(l, snapshot)
		return err
	}
	l.journal.reset()
	return nil
}
