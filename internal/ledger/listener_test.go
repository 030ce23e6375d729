package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

type recordingListener struct {
	name      string
	mints     []types.MintReceipt
	withdraws []types.WithdrawReceipt
	err       error
}

func (r *recordingListener) Name() string { return r.name }

func (r *recordingListener) OnMint(_ context.Context, receipt types.MintReceipt) error {
	r.mints = append(r.mints, receipt)
	return r.err
}

func (r *recordingListener) OnWithdraw(_ context.Context, receipt types.WithdrawReceipt) error {
	r.withdraws = append(r.withdraws, receipt)
	return r.err
}

// mintOnly implements only OnMint.
type mintOnly struct {
	count int
}

func (*mintOnly) Name() string { return "mint-only" }

func (m *mintOnly) OnMint(context.Context, types.MintReceipt) error {
	m.count++
	return nil
}

func TestListenersNotifiedAfterCommit(t *testing.T) {
	rec := &recordingListener{name: "recorder"}
	mo := &mintOnly{}
	l, _ := deployTest(t, 10, ether(1), WithListener(rec), WithListener(mo))

	mint(t, l, alice, 2)
	_, err := l.Withdraw(context.Background(), deployer)
	require.NoError(t, err)

	require.Len(t, rec.mints, 1)
	assert.Equal(t, []uint64{1, 2}, rec.mints[0].TokenIDs())
	require.Len(t, rec.withdraws, 1)
	assert.Equal(t, ether(2), rec.withdraws[0].Amount)
	assert.Equal(t, 1, mo.count)
}

func TestListenersSkippedOnRevert(t *testing.T) {
	rec := &recordingListener{name: "recorder"}
	l, _ := deployTest(t, 10, ether(1), WithListener(rec))

	_, err := l.Mint(context.Background(), alice, types.MintRequest{Quantity: 1, BaseURIs: uris(1), Payment: new(big.Int)})
	require.ErrorIs(t, err, types.ErrInsufficientPayment)
	_, err = l.Withdraw(context.Background(), alice)
	require.ErrorIs(t, err, types.ErrNotOwner)

	assert.Empty(t, rec.mints)
	assert.Empty(t, rec.withdraws)
}

func TestListenerErrorDoesNotFailMint(t *testing.T) {
	rec := &recordingListener{name: "broken", err: errors.New("webhook down")}
	l, _ := deployTest(t, 10, ether(1), WithListener(rec))

	mint(t, l, alice, 1)
	assert.Len(t, rec.mints, 1)
	assert.Equal(t, uint64(1), l.TotalSupply())
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.Register(&recordingListener{name: "a"}))
	err := r.Register(&recordingListener{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate registration: a")
	assert.Len(t, r.onMint, 1)
}
