package memory

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

var (
	owner  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	minter = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func deployed(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Deploy(context.Background(), types.LedgerInfo{
		Name:         types.DefaultName,
		Symbol:       types.DefaultSymbol,
		MaxSupply:    10,
		CostPerToken: big.NewInt(5),
		Owner:        owner,
	}))
	return s
}

func TestStoreNotDeployed(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, types.ErrNotDeployed)
	require.ErrorIs(t, s.CommitMint(ctx, types.MintReceipt{Paid: new(big.Int)}), types.ErrNotDeployed)
	require.ErrorIs(t, s.CommitWithdraw(ctx, types.WithdrawReceipt{Amount: new(big.Int)}), types.ErrNotDeployed)
}

func TestStoreDeployTwice(t *testing.T) {
	s := deployed(t)
	err := s.Deploy(context.Background(), types.LedgerInfo{Name: "again"})
	require.ErrorIs(t, err, types.ErrAlreadyDeployed)
}

func TestStoreCommits(t *testing.T) {
	s := deployed(t)
	ctx := context.Background()

	require.NoError(t, s.CommitMint(ctx, types.MintReceipt{
		Minter: minter,
		Tokens: []types.Token{{TokenID: 1, Owner: minter}, {TokenID: 2, Owner: minter}},
		Paid:   big.NewInt(12),
		Event:  types.Event{Seq: 1, Kind: types.EventMint, Account: minter},
	}))
	require.NoError(t, s.CommitWithdraw(ctx, types.WithdrawReceipt{
		Owner:  owner,
		Amount: big.NewInt(12),
		Event:  types.Event{Seq: 2, Kind: types.EventWithdraw, Account: owner},
	}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Tokens, 2)
	assert.Equal(t, 0, snap.Balance.Sign())
	assert.Equal(t, uint64(2), snap.EventCount)

	mints, err := s.Events(ctx, types.EventFilter{Kind: types.EventMint})
	require.NoError(t, err)
	require.Len(t, mints, 1)
	assert.Equal(t, minter, mints[0].Account)

	byOwner, err := s.Events(ctx, types.EventFilter{Account: &owner})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, types.EventWithdraw, byOwner[0].Kind)
}

func TestStoreLoadReturnsCopies(t *testing.T) {
	s := deployed(t)
	ctx := context.Background()
	require.NoError(t, s.CommitMint(ctx, types.MintReceipt{
		Tokens: []types.Token{{TokenID: 1, Owner: minter}},
		Paid:   big.NewInt(5),
	}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	snap.Tokens[0].Owner = owner
	snap.Balance.SetInt64(0)
	snap.Info.CostPerToken.SetInt64(0)

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, minter, again.Tokens[0].Owner)
	assert.Equal(t, big.NewInt(5), again.Balance)
	assert.Equal(t, big.NewInt(5), again.Info.CostPerToken)
	require.NoError(t, s.Close())
}

func TestStoreRevertWithdraw(t *testing.T) {
	s := deployed(t)
	ctx := context.Background()

	mintEvent := types.Event{EventID: "m1", Seq: 1, Kind: types.EventMint, Account: minter}
	require.NoError(t, s.CommitMint(ctx, types.MintReceipt{
		Tokens: []types.Token{{TokenID: 1, Owner: minter}},
		Paid:   big.NewInt(5),
		Event:  mintEvent,
	}))
	require.ErrorIs(t, s.RevertWithdraw(ctx, types.WithdrawReceipt{Amount: big.NewInt(5), Event: mintEvent}),
		types.ErrWithdrawNotFound)

	w := types.WithdrawReceipt{
		Owner:  owner,
		Amount: big.NewInt(5),
		Event:  types.Event{EventID: "w2", Seq: 2, Kind: types.EventWithdraw, Account: owner},
	}
	require.NoError(t, s.CommitWithdraw(ctx, w))
	require.NoError(t, s.RevertWithdraw(ctx, w))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), snap.Balance)
	assert.Equal(t, uint64(1), snap.EventCount)

	require.ErrorIs(t, s.RevertWithdraw(ctx, w), types.ErrWithdrawNotFound)
}
