package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// timeLayout is the text form of every stored timestamp.
const timeLayout = time.RFC3339Nano

// Load returns the committed ledger state.
// Returns ErrNotDeployed if no ledger row exists.
func (b *Backend) Load(ctx context.Context) (*types.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	snap := &types.Snapshot{}
	info, balance, err := b.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	snap.Info = info
	snap.Balance = balance

	if snap.Tokens, err = b.loadTokens(ctx); err != nil {
		return nil, err
	}
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&snap.EventCount); err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	return snap, nil
}

func (b *Backend) loadLedger(ctx context.Context) (types.LedgerInfo, *big.Int, error) {
	var (
		info      types.LedgerInfo
		maxSupply int64
		cost      string
		owner     string
		bal       string
		deployed  string
	)
	err := b.db.QueryRowContext(ctx,
		"SELECT name, symbol, max_supply, cost_per_token, owner, balance, deployed_at FROM ledger WHERE ledger_id = 1",
	).Scan(&info.Name, &info.Symbol, &maxSupply, &cost, &owner, &bal, &deployed)
	if errors.Is(err, sql.ErrNoRows) {
		return info, nil, types.ErrNotDeployed
	}
	if err != nil {
		return info, nil, fmt.Errorf("scanning ledger: %w", err)
	}

	info.MaxSupply = uint64(maxSupply)
	if info.CostPerToken, err = parseAmount(cost); err != nil {
		return info, nil, fmt.Errorf("parsing ledger cost_per_token: %w", err)
	}
	if info.Owner, err = parseAddress(owner); err != nil {
		return info, nil, fmt.Errorf("parsing ledger owner: %w", err)
	}
	if info.DeployedAt, err = time.Parse(timeLayout, deployed); err != nil {
		return info, nil, fmt.Errorf("parsing ledger deployed_at: %w", err)
	}
	balance, err := parseAmount(bal)
	if err != nil {
		return info, nil, fmt.Errorf("parsing ledger balance: %w", err)
	}
	return info, balance, nil
}

func (b *Backend) loadTokens(ctx context.Context) ([]types.Token, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT token_id, owner, base_uri, minted_at FROM tokens ORDER BY token_id")
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	var tokens []types.Token
	for rows.Next() {
		var (
			t               types.Token
			id              int64
			owner, mintedAt string
		)
		if err := rows.Scan(&id, &owner, &t.BaseURI, &mintedAt); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		t.TokenID = uint64(id)
		if t.Owner, err = parseAddress(owner); err != nil {
			return nil, fmt.Errorf("parsing token %d owner: %w", id, err)
		}
		if t.MintedAt, err = time.Parse(timeLayout, mintedAt); err != nil {
			return nil, fmt.Errorf("parsing token %d minted_at: %w", id, err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// Deploy inserts the ledger row with a zero balance.
// Returns ErrAlreadyDeployed if the row exists.
func (b *Backend) Deploy(ctx context.Context, info types.LedgerInfo) error {
	if info.MaxSupply > math.MaxInt64 {
		return types.ErrInvalidMaxSupply
	}
	return b.withTx(ctx, []string{"ledger"}, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledger").Scan(&n); err != nil {
			return fmt.Errorf("checking ledger: %w", err)
		}
		if n > 0 {
			return types.ErrAlreadyDeployed
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ledger (ledger_id, name, symbol, max_supply, cost_per_token, owner, balance, deployed_at) VALUES (1, ?, ?, ?, ?, ?, ?, ?)",
			info.Name, info.Symbol, int64(info.MaxSupply), info.CostPerToken.String(),
			info.Owner.Hex(), "0", info.DeployedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("inserting ledger: %w", err)
		}
		return nil
	})
}

// CommitMint inserts the minted tokens and the Mint event and adds the
// payment to the stored balance, in one transaction.
func (b *Backend) CommitMint(ctx context.Context, r types.MintReceipt) error {
	return b.withTx(ctx, []string{"ledger", "tokens", "events"}, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO tokens (token_id, owner, base_uri, minted_at) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing token insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range r.Tokens {
			if _, err := stmt.ExecContext(ctx, int64(t.TokenID), t.Owner.Hex(), t.BaseURI,
				t.MintedAt.UTC().Format(timeLayout)); err != nil {
				return fmt.Errorf("inserting token %d: %w", t.TokenID, err)
			}
		}
		if err := adjustBalance(ctx, tx, r.Paid); err != nil {
			return err
		}
		return insertEvent(ctx, tx, r.Event)
	})
}

// CommitWithdraw subtracts the withdrawn amount from the stored balance
// and records the Withdraw event, in one transaction.
func (b *Backend) CommitWithdraw(ctx context.Context, r types.WithdrawReceipt) error {
	return b.withTx(ctx, []string{"ledger", "events"}, func(tx *sql.Tx) error {
		if err := adjustBalance(ctx, tx, new(big.Int).Neg(r.Amount)); err != nil {
			return err
		}
		return insertEvent(ctx, tx, r.Event)
	})
}

// RevertWithdraw returns the amount of withdrawal r to the stored balance
// and deletes its event, in one transaction. Only the latest event can be
// reverted.
func (b *Backend) RevertWithdraw(ctx context.Context, r types.WithdrawReceipt) error {
	return b.withTx(ctx, []string{"ledger", "events"}, func(tx *sql.Tx) error {
		var (
			seq           int64
			eventID, kind string
		)
		err := tx.QueryRowContext(ctx,
			"SELECT seq, event_id, kind FROM events ORDER BY seq DESC LIMIT 1",
		).Scan(&seq, &eventID, &kind)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrWithdrawNotFound
		}
		if err != nil {
			return fmt.Errorf("reading latest event: %w", err)
		}
		if eventID != r.Event.EventID || kind != types.EventWithdraw {
			return types.ErrWithdrawNotFound
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE seq = ?", seq); err != nil {
			return fmt.Errorf("deleting event %d: %w", seq, err)
		}
		return adjustBalance(ctx, tx, r.Amount)
	})
}

// Events returns the events matching filter ordered by sequence.
func (b *Backend) Events(ctx context.Context, filter types.EventFilter) ([]types.Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	query := "SELECT seq, event_id, kind, account, quantity, first_token_id, amount, created_at FROM events WHERE 1 = 1"
	var args []any
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.Account != nil {
		query += " AND account = ?"
		args = append(args, filter.Account.Hex())
	}
	query += " ORDER BY seq"

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []types.Event{}
	for rows.Next() {
		var (
			e                           types.Event
			seq, quantity, firstTokenID int64
			account, amount, createdAt  string
		)
		if err := rows.Scan(&seq, &e.EventID, &e.Kind, &account, &quantity, &firstTokenID, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Seq = uint64(seq)
		e.Quantity = uint64(quantity)
		e.FirstTokenID = uint64(firstTokenID)
		if e.Account, err = parseAddress(account); err != nil {
			return nil, fmt.Errorf("parsing event %d account: %w", seq, err)
		}
		if e.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("parsing event %d amount: %w", seq, err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing event %d created_at: %w", seq, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// withTx runs fn in a transaction, writes the touched tables as new JSONL
// generation files and commits. Swapping the manifest is the single step
// that makes the write durable; any failure before it leaves the committed
// files as they were, and a failed database commit after it swaps the
// previous manifest back.
func (b *Backend) withTx(ctx context.Context, touched []string, fn func(tx *sql.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	dataDir := b.config.DataDir
	next, written, err := stageTables(tx, dataDir, b.manifest, touched...)
	if err != nil {
		return err
	}
	if err := writeManifest(dataDir, next); err != nil {
		removeFiles(dataDir, written)
		return err
	}
	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
		if rerr := writeManifest(dataDir, b.manifest); rerr != nil {
			return errors.Join(err, fmt.Errorf("restoring manifest: %w", rerr))
		}
		removeFiles(dataDir, written)
		return err
	}

	prev := b.manifest
	b.manifest = next
	removeFiles(dataDir, prev.superseded(next))
	return nil
}

// adjustBalance adds delta to the stored balance. A negative result is an
// accounting error and aborts the transaction.
func adjustBalance(ctx context.Context, tx *sql.Tx, delta *big.Int) error {
	var current string
	err := tx.QueryRowContext(ctx, "SELECT balance FROM ledger WHERE ledger_id = 1").Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotDeployed
	}
	if err != nil {
		return fmt.Errorf("reading balance: %w", err)
	}
	bal, err := parseAmount(current)
	if err != nil {
		return fmt.Errorf("parsing balance: %w", err)
	}
	bal.Add(bal, delta)
	if bal.Sign() < 0 {
		return fmt.Errorf("balance would become negative: %s", bal)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE ledger SET balance = ? WHERE ledger_id = 1", bal.String()); err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, e types.Event) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO events (seq, event_id, kind, account, quantity, first_token_id, amount, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		int64(e.Seq), e.EventID, e.Kind, e.Account.Hex(), int64(e.Quantity), int64(e.FirstTokenID),
		amountString(e.Amount), e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting event %d: %w", e.Seq, err)
	}
	return nil
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", types.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
