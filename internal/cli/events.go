package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

func (a *app) newEventsCmd() *cobra.Command {
	var kind, account string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded Mint and Withdraw events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := eventFilter(kind, account)
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				events, err := l.Events(cmd.Context(), filter)
				if err != nil {
					return err
				}
				views := make([]eventView, len(events))
				for i, e := range events {
					views[i] = newEventView(e)
				}
				return a.print(cmd, views, func(p *printer) {
					for _, v := range views {
						switch v.Kind {
						case types.EventMint:
							p.line("%d\t%s\t%s\tids %d..%d\t%s wei", v.Seq, v.Kind, v.Account, v.FirstTokenID, v.FirstTokenID+v.Quantity-1, v.Amount)
						default:
							p.line("%d\t%s\t%s\t%s wei", v.Seq, v.Kind, v.Account, v.Amount)
						}
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only events of this kind (mint or withdraw)")
	cmd.Flags().StringVar(&account, "account", "", "only events for this address")
	return cmd
}

func eventFilter(kind, account string) (types.EventFilter, error) {
	var f types.EventFilter
	if kind != "" {
		for _, k := range []string{types.EventMint, types.EventWithdraw} {
			if strings.EqualFold(kind, k) {
				f.Kind = k
			}
		}
		if !types.ValidEventKind(f.Kind) {
			return f, usageErrorf("unknown event kind %q (valid: mint, withdraw)", kind)
		}
	}
	if account != "" {
		addr, err := parseAddress(account)
		if err != nil {
			return f, err
		}
		f.Account = &addr
	}
	return f, nil
}
