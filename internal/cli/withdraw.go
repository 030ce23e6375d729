package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
)

func (a *app) newWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw the retained balance to the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller()
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				receipt, err := l.Withdraw(cmd.Context(), caller)
				if err != nil {
					return err
				}
				return a.print(cmd, withdrawView{
					Owner:  receipt.Owner.Hex(),
					Amount: weiString(receipt.Amount),
					Event:  newEventView(receipt.Event),
				}, func(p *printer) {
					p.line("Withdrew %s wei (%s ETH) to %s", receipt.Amount, formatEther(receipt.Amount), receipt.Owner.Hex())
				})
			})
		},
	}
}
