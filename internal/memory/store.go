// Package memory implements types.Store with in-process maps. State is
// lost when the process exits.
package memory

import (
	"context"
	"math/big"
	"sync"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// Store keeps committed ledger state in memory.
type Store struct {
	mu sync.RWMutex

	info    *types.LedgerInfo
	tokens  []types.Token
	balance *big.Int
	events  []types.Event
}

// New returns an empty store with no ledger deployed.
func New() *Store {
	return &Store{balance: new(big.Int)}
}

func (s *Store) Load(_ context.Context) (*types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.info == nil {
		return nil, types.ErrNotDeployed
	}
	tokens := make([]types.Token, len(s.tokens))
	copy(tokens, s.tokens)
	return &types.Snapshot{
		Info:       s.info.Clone(),
		Tokens:     tokens,
		Balance:    new(big.Int).Set(s.balance),
		EventCount: uint64(len(s.events)),
	}, nil
}

func (s *Store) Deploy(_ context.Context, info types.LedgerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info != nil {
		return types.ErrAlreadyDeployed
	}
	c := info.Clone()
	s.info = &c
	return nil
}

func (s *Store) CommitMint(_ context.Context, r types.MintReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info == nil {
		return types.ErrNotDeployed
	}
	s.tokens = append(s.tokens, r.Tokens...)
	s.balance = new(big.Int).Add(s.balance, r.Paid)
	s.events = append(s.events, r.Event)
	return nil
}

func (s *Store) CommitWithdraw(_ context.Context, r types.WithdrawReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info == nil {
		return types.ErrNotDeployed
	}
	s.balance = new(big.Int).Sub(s.balance, r.Amount)
	s.events = append(s.events, r.Event)
	return nil
}

func (s *Store) RevertWithdraw(_ context.Context, r types.WithdrawReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info == nil {
		return types.ErrNotDeployed
	}
	n := len(s.events)
	if n == 0 || s.events[n-1].EventID != r.Event.EventID || s.events[n-1].Kind != types.EventWithdraw {
		return types.ErrWithdrawNotFound
	}
	s.balance = new(big.Int).Add(s.balance, r.Amount)
	s.events = s.events[:n-1]
	return nil
}

func (s *Store) Events(_ context.Context, filter types.EventFilter) ([]types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Event, 0, len(s.events))
	for _, e := range s.events {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close is a no-op; the state stays readable.
func (s *Store) Close() error {
	return nil
}
