package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

func TestLedgerSurvivesReattach(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	opts := []ledger.Option{
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithClock(func() time.Time { return fixedTime }),
	}

	b := attachTest(t, dir)
	info := testInfo()
	info.MaxSupply = 3
	l, err := ledger.Deploy(ctx, b, info, opts...)
	require.NoError(t, err)

	_, err = l.Mint(ctx, alice, types.MintRequest{
		Quantity: 2,
		BaseURIs: []string{"ipfs://QmA", "ipfs://QmB"},
		Payment:  l.MintCost(2),
	})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := attachTest(t, dir)
	l2, err := ledger.Open(ctx, b2, opts...)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), l2.TotalSupply())
	assert.Equal(t, big.NewInt(500), l2.Balance())
	uri, err := l2.TokenURI(2)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmB/2.json", uri)

	// Supply left after reopening is one token.
	_, err = l2.Mint(ctx, bob, types.MintRequest{Quantity: 2, BaseURIs: []string{"x", "y"}, Payment: l2.MintCost(2)})
	require.ErrorIs(t, err, types.ErrSupplyExceeded)

	r, err := l2.Mint(ctx, bob, types.MintRequest{Quantity: 1, BaseURIs: []string{"ipfs://QmC"}, Payment: l2.MintCost(1)})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, r.TokenIDs())
	assert.Equal(t, uint64(2), r.Event.Seq)

	w, err := l2.Withdraw(ctx, deployer)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(750), w.Amount)

	snap, err := b2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Balance.Sign())
	assert.Equal(t, uint64(3), snap.EventCount)
}

func TestRejectedPaymentLeavesNothingOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	refused := errors.New("recipient refused")
	var paid []*big.Int
	payee := ledger.PayeeFunc(func(_ context.Context, _ common.Address, amount *big.Int) error {
		paid = append(paid, amount)
		return refused
	})

	b := attachTest(t, dir)
	l, err := ledger.Deploy(ctx, b, testInfo(),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithPayee(payee))
	require.NoError(t, err)
	_, err = l.Mint(ctx, alice, types.MintRequest{Quantity: 1, BaseURIs: []string{"ipfs://QmA"}, Payment: l.MintCost(1)})
	require.NoError(t, err)

	_, err = l.Withdraw(ctx, deployer)
	require.ErrorIs(t, err, types.ErrPaymentRejected)
	require.Len(t, paid, 1)
	require.NoError(t, b.Detach())

	b2 := attachTest(t, dir)
	snap, err := b2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(250), snap.Balance)
	assert.Equal(t, uint64(1), snap.EventCount)
}
