package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
	"github.com/mesh-intelligence/mintfactory/pkg/sqlite"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// openStore opens the configured backend on the resolved data directory.
// The memory backend keeps no state between commands and is refused.
func (a *app) openStore() (types.Store, error) {
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: a.dirs.Data,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == types.BackendMemory {
		return nil, usageErrorf("backend %q keeps state for a single process and cannot be used from the command line; set backend to %q",
			types.BackendMemory, types.BackendSQLite)
	}
	return sqlite.Open(cfg)
}

// withLedger opens the store, rebuilds the deployed ledger and runs fn.
// The store is closed when fn returns.
func (a *app) withLedger(ctx context.Context, fn func(l *ledger.Ledger) error) (err error) {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	l, err := ledger.Open(ctx, store, ledger.WithLogger(a.logger))
	if err != nil {
		return err
	}
	return fn(l)
}

// caller returns the --from address, falling back to the configured account.
func (a *app) caller() (common.Address, error) {
	raw := a.flags.from
	if raw == "" {
		raw = a.cfg.GetString(cfgKeyAccount)
	}
	if raw == "" {
		return common.Address{}, usageErrorf("no caller address: pass --from or set %s_ACCOUNT", envPrefix)
	}
	return parseAddress(raw)
}

// parseAddress accepts a 0x-prefixed or bare 20-byte hex address.
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", types.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
