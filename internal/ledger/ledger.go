// Package ledger implements the token ledger: batch minting with sequential
// id allocation, per-token metadata binding, payment enforcement and owner
// withdrawals. Every mutating call commits fully or reverts fully.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// Ledger is the single owned aggregate holding all token state.
// It is safe for concurrent use; mutating calls are serialized.
type Ledger struct {
	mu sync.RWMutex

	info     types.LedgerInfo
	tokens   []types.Token               // tokens[i] has id i+1
	wallets  map[common.Address][]uint64 // ascending ids per owner
	balance  *big.Int                    // retained funds in wei
	eventSeq uint64                      // sequence of the last recorded event
	journal  *journal

	store     types.Store
	payee     types.Payee
	listeners *registry
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.listeners.logger = logger
	}
}

// WithPayee sets the recipient of withdrawn funds. The default accepts
// every transfer.
func WithPayee(p types.Payee) Option {
	return func(l *Ledger) {
		l.payee = p
	}
}

// WithListener registers a listener notified after each commit.
func WithListener(ln Listener) Option {
	return func(l *Ledger) {
		if err := l.listeners.Register(ln); err != nil {
			l.logger.Warn("listener not registered", "listener", ln.Name(), "error", err)
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func newLedger(store types.Store, opts []Option) *Ledger {
	l := &Ledger{
		wallets:   make(map[common.Address][]uint64),
		balance:   new(big.Int),
		journal:   newJournal(),
		store:     store,
		payee:     AcceptAll,
		listeners: newRegistry(),
		logger:    slog.Default(),
		now:       time.Now,
		newID:     newUUID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Deploy creates a new ledger with the given parameters and records it in
// store. A zero DeployedAt is set to the current time.
// Returns ErrAlreadyDeployed if store already holds a ledger.
func Deploy(ctx context.Context, store types.Store, info types.LedgerInfo, opts ...Option) (*Ledger, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	l := newLedger(store, opts)
	l.info = info.Clone()
	if l.info.DeployedAt.IsZero() {
		l.info.DeployedAt = l.now().UTC()
	}
	if err := store.Deploy(ctx, l.info); err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}
	l.logger.Info("ledger deployed",
		"name", l.info.Name,
		"symbol", l.info.Symbol,
		"max_supply", l.info.MaxSupply,
		"cost_per_token", l.info.CostPerToken,
		"owner", l.info.Owner.Hex(),
	)
	return l, nil
}

// Open rebuilds a ledger from the state committed in store.
// Returns ErrNotDeployed if store holds no ledger.
func Open(ctx context.Context, store types.Store, opts ...Option) (*Ledger, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	l := newLedger(store, opts)
	l.info = snap.Info.Clone()
	for i, t := range snap.Tokens {
		if t.TokenID != uint64(i+1) {
			return nil, fmt.Errorf("open: token %d stored at position %d", t.TokenID, i+1)
		}
		l.tokens = append(l.tokens, t)
		l.wallets[t.Owner] = append(l.wallets[t.Owner], t.TokenID)
	}
	if uint64(len(l.tokens)) > l.info.MaxSupply {
		return nil, fmt.Errorf("open: %d tokens exceed max supply %d", len(l.tokens), l.info.MaxSupply)
	}
	if snap.Balance != nil {
		l.balance.Set(snap.Balance)
	}
	l.eventSeq = snap.EventCount
	return l, nil
}

// Name returns the ledger's display name.
func (l *Ledger) Name() string {
	return l.info.Name
}

// Symbol returns the ledger's display symbol.
func (l *Ledger) Symbol() string {
	return l.info.Symbol
}

// Owner returns the address allowed to withdraw.
func (l *Ledger) Owner() common.Address {
	return l.info.Owner
}

// MaxSupply returns the cap on tokens ever minted.
func (l *Ledger) MaxSupply() uint64 {
	return l.info.MaxSupply
}

// CostPerToken returns a copy of the price of one token in wei.
func (l *Ledger) CostPerToken() *big.Int {
	return new(big.Int).Set(l.info.CostPerToken)
}

// Info returns a copy of the deployment parameters.
func (l *Ledger) Info() types.LedgerInfo {
	return l.info.Clone()
}

// TotalSupply returns the number of tokens minted so far.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.tokens))
}

// Balance returns a copy of the funds currently retained by the ledger.
func (l *Ledger) Balance() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.balance)
}

// BalanceOf returns the number of tokens owned by addr.
func (l *Ledger) BalanceOf(addr common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.wallets[addr]))
}

// Token returns the token with the given id.
// Returns ErrTokenNotFound if the id was never minted.
func (l *Ledger) Token(tokenID uint64) (types.Token, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tokenLocked(tokenID)
}

func (l *Ledger) tokenLocked(tokenID uint64) (types.Token, error) {
	if tokenID == 0 || tokenID > uint64(len(l.tokens)) {
		return types.Token{}, types.ErrTokenNotFound
	}
	return l.tokens[tokenID-1], nil
}

// OwnerOf returns the owner of a token.
// Returns ErrTokenNotFound if the id was never minted.
func (l *Ledger) OwnerOf(tokenID uint64) (common.Address, error) {
	t, err := l.Token(tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return t.Owner, nil
}

// TokenURI returns "<baseURI>/<id>.json" for a minted token.
// Returns ErrTokenNotFound if the id was never minted.
func (l *Ledger) TokenURI(tokenID uint64) (string, error) {
	t, err := l.Token(tokenID)
	if err != nil {
		return "", err
	}
	return t.URI(), nil
}

// WalletOfOwner returns every id owned by addr in ascending order.
// The result is empty, not nil, when addr owns nothing.
func (l *Ledger) WalletOfOwner(addr common.Address) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.wallets[addr]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// Events returns the recorded events matching filter, oldest first.
func (l *Ledger) Events(ctx context.Context, filter types.EventFilter) ([]types.Event, error) {
	return l.store.Events(ctx, filter)
}
