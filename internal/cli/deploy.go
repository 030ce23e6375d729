package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

type deployFlags struct {
	name      string
	symbol    string
	maxSupply uint64
	cost      string
	owner     string
}

func (a *app) newDeployCmd() *cobra.Command {
	var f deployFlags
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create the token ledger",
		Long: "Create the ledger with a name, symbol, max supply and per-token cost.\n" +
			"Unset flags fall back to the ledger.* config keys. The owner defaults to --from.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.deployInfo(cmd, f)
			if err != nil {
				return err
			}
			return a.runDeploy(cmd, info)
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "ledger name (default: ledger.name)")
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "ledger symbol (default: ledger.symbol)")
	cmd.Flags().Uint64Var(&f.maxSupply, "max-supply", 0, "maximum tokens ever minted (default: ledger.max_supply)")
	cmd.Flags().StringVar(&f.cost, "cost", "", "cost per token in wei (default: ledger.cost_per_token)")
	cmd.Flags().StringVar(&f.owner, "owner", "", "address allowed to withdraw (default: --from)")
	return cmd
}

func (a *app) deployInfo(cmd *cobra.Command, f deployFlags) (types.LedgerInfo, error) {
	info := types.LedgerInfo{
		Name:      a.cfg.GetString(cfgKeyName),
		Symbol:    a.cfg.GetString(cfgKeySymbol),
		MaxSupply: a.cfg.GetUint64(cfgKeyMaxSupply),
	}
	if cmd.Flags().Changed("name") {
		info.Name = f.name
	}
	if cmd.Flags().Changed("symbol") {
		info.Symbol = f.symbol
	}
	if cmd.Flags().Changed("max-supply") {
		info.MaxSupply = f.maxSupply
	}

	cost := a.cfg.GetString(cfgKeyCostPerUnit)
	if cmd.Flags().Changed("cost") {
		cost = f.cost
	}
	var err error
	if info.CostPerToken, err = parseWei(cost); err != nil {
		return info, err
	}

	if f.owner != "" {
		info.Owner, err = parseAddress(f.owner)
	} else {
		info.Owner, err = a.caller()
	}
	return info, err
}

func (a *app) runDeploy(cmd *cobra.Command, info types.LedgerInfo) (err error) {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	l, err := ledger.Deploy(cmd.Context(), store, info, ledger.WithLogger(a.logger))
	if err != nil {
		return err
	}
	return a.print(cmd, newInfoView(l), func(p *printer) {
		p.line("Deployed %s (%s)", l.Name(), l.Symbol())
		p.field("max supply", l.MaxSupply())
		p.field("cost", fmt.Sprintf("%s wei (%s ETH)", l.CostPerToken(), formatEther(l.CostPerToken())))
		p.field("owner", l.Owner().Hex())
	})
}

func newInfoView(l *ledger.Ledger) infoView {
	info := l.Info()
	return infoView{
		Name:         info.Name,
		Symbol:       info.Symbol,
		TotalSupply:  l.TotalSupply(),
		MaxSupply:    info.MaxSupply,
		CostPerToken: weiString(info.CostPerToken),
		Owner:        info.Owner.Hex(),
		Balance:      weiString(l.Balance()),
		DeployedAt:   info.DeployedAt,
	}
}
