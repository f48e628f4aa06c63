package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rohianon/equishare-dashboard/cmd/dashboard/internal/output"
	"github.com/Rohianon/equishare-dashboard/pkg/dashboard"
	apperrors "github.com/Rohianon/equishare-dashboard/pkg/errors"
	"github.com/Rohianon/equishare-dashboard/pkg/format"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Account balance commands",
	Long:  "Manage the account balance.",
}

var balanceSetCmd = &cobra.Command{
	Use:     "set AMOUNT",
	Short:   "Set the account balance",
	Long:    "Replace the account balance with AMOUNT, then reload the portfolio.",
	Example: "  dashboard balance set 2500.50",
	Args:    cobra.ExactArgs(1),
	RunE:    runBalanceSet,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceSetCmd)
}

func runBalanceSet(cmd *cobra.Command, args []string) error {
	session, done := newSession()
	defer done()

	if !session.Writable() {
		return apperrors.ErrWritesDisabled
	}

	view, err := session.UpdateBalance(cmd.Context(), dashboard.BalanceDraft{Amount: args[0]})
	if err != nil {
		return describe(err)
	}

	if getFormat() == "json" {
		return output.JSON(view)
	}

	output.Success(fmt.Sprintf("Balance set, total value %s", format.Money(view.Totals.TotalValue)))
	output.KeyValue([][]string{
		{"Market value", format.Money(view.Totals.MarketValue)},
		{"Cash", output.Signed(view.Totals.Cash)},
		{"Source", string(view.BalanceSource)},
	})
	return nil
}
