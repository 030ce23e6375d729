package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mintfactory/internal/ledger"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

func (a *app) newMintCmd() *cobra.Command {
	var (
		quantity uint64
		uris     []string
		payment  amountFlags
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a batch of tokens",
		Long: "Mint --quantity tokens to --from, binding the ith --uri to the ith new id.\n" +
			"The quantity defaults to the number of URIs and the payment to quantity * cost.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			minter, err := a.caller()
			if err != nil {
				return err
			}
			paid, err := payment.parse()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("quantity") {
				quantity = uint64(len(uris))
			}

			return a.withLedger(cmd.Context(), func(l *ledger.Ledger) error {
				req := types.MintRequest{Quantity: quantity, BaseURIs: uris, Payment: paid}
				if req.Payment == nil {
					req.Payment = l.MintCost(quantity)
				}
				receipt, err := l.Mint(cmd.Context(), minter, req)
				if err != nil {
					return err
				}
				return a.print(cmd, mintView{
					Minter:   receipt.Minter.Hex(),
					TokenIDs: receipt.TokenIDs(),
					Paid:     weiString(receipt.Paid),
					Event:    newEventView(receipt.Event),
				}, func(p *printer) {
					p.line("Minted %d token(s) to %s", len(receipt.Tokens), receipt.Minter.Hex())
					for _, t := range receipt.Tokens {
						p.field(fmt.Sprintf("#%d", t.TokenID), t.URI())
					}
					p.field("paid", fmt.Sprintf("%s wei", receipt.Paid))
				})
			})
		},
	}
	cmd.Flags().Uint64Var(&quantity, "quantity", 0, "number of tokens to mint (default: number of --uri values)")
	cmd.Flags().StringArrayVar(&uris, "uri", nil, "metadata base URI, one per token (repeatable)")
	cmd.Flags().StringVar(&payment.value, "value", "", "payment in wei (default: quantity * cost)")
	cmd.Flags().StringVar(&payment.ether, "ether", "", "payment in ether")
	return cmd
}
