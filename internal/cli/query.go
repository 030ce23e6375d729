package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show ledger parameters, supply and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				v := newInfoView(l)
				return a.print(cmd, v, func(p *printer) {
					p.line("%s (%s)", v.Name, v.Symbol)
					p.field("supply", fmt.Sprintf("%d / %d", v.TotalSupply, v.MaxSupply))
					p.field("cost", fmt.Sprintf("%s wei (%s ETH)", v.CostPerToken, formatEther(l.CostPerToken())))
					p.field("owner", v.Owner)
					p.field("balance", fmt.Sprintf("%s wei (%s ETH)", v.Balance, formatEther(l.Balance())))
					p.field("deployed", v.DeployedAt.Format("2006-01-02 15:04:05 MST"))
				})
			})
		},
	}
}

func (a *app) newOwnerOfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner-of TOKEN_ID",
		Short: "Show the owner of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				owner, err := l.OwnerOf(id)
				if err != nil {
					return err
				}
				return a.print(cmd, map[string]any{"token_id": id, "owner": owner.Hex()}, func(p *printer) {
					p.line("%s", owner.Hex())
				})
			})
		},
	}
}

func (a *app) newBalanceOfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance-of ADDRESS",
		Short: "Show how many tokens an address owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				n := l.BalanceOf(addr)
				return a.print(cmd, map[string]any{"owner": addr.Hex(), "balance": n}, func(p *printer) {
					p.line("%d", n)
				})
			})
		},
	}
}

func (a *app) newTokenURICmd() *cobra.Command {
	var gateway string
	cmd := &cobra.Command{
		Use:   "token-uri TOKEN_ID",
		Short: "Show the metadata URI of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			gw := a.gateway(cmd, gateway)
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				t, err := l.Token(id)
				if err != nil {
					return err
				}
				v := newTokenView(t, gw)
				return a.print(cmd, v, func(p *printer) {
					p.line("%s", v.TokenURI)
					if v.GatewayURL != "" {
						p.line("%s", v.GatewayURL)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&gateway, "gateway", "", "IPFS gateway host for display URLs (default: gateway config key)")
	return cmd
}

func (a *app) newWalletCmd() *cobra.Command {
	var gateway string
	cmd := &cobra.Command{
		Use:   "wallet ADDRESS",
		Short: "List the tokens an address owns, ascending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			gw := a.gateway(cmd, gateway)
			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				ids := l.WalletOfOwner(addr)
				views := make([]tokenView, 0, len(ids))
				for _, id := range ids {
					t, err := l.Token(id)
					if err != nil {
						return err
					}
					views = append(views, newTokenView(t, gw))
				}
				return a.print(cmd, views, func(p *printer) {
					if len(views) == 0 {
						p.line("%s owns no tokens", addr.Hex())
						return
					}
					for _, v := range views {
						uri := v.TokenURI
						if v.GatewayURL != "" {
							uri = v.GatewayURL
						}
						p.line("%d\t%s", v.TokenID, uri)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&gateway, "gateway", "", "IPFS gateway host for display URLs (default: gateway config key)")
	return cmd
}

// gateway returns the --gateway flag when set, else the configured gateway.
func (a *app) gateway(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("gateway") {
		return flag
	}
	return a.cfg.GetString(cfgKeyGateway)
}

func parseTokenID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, usageErrorf("invalid token id %q", s)
	}
	return id, nil
}
