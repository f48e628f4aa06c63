package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rohianon/equishare-dashboard/cmd/dashboard/internal/output"
	"github.com/Rohianon/equishare-dashboard/pkg/dashboard"
	apperrors "github.com/Rohianon/equishare-dashboard/pkg/errors"
	"github.com/Rohianon/equishare-dashboard/pkg/format"
)

var holdingCmd = &cobra.Command{
	Use:   "holding",
	Short: "Holding commands",
	Long:  "Manage portfolio holdings.",
}

var holdingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a holding",
	Long: `Add a holding to the portfolio, then reload it.

Name, symbol, shares and average cost are required. Missing values are
prompted for when running in a terminal. The current price is optional.`,
	Example: "  dashboard holding add --name Alpha --symbol A --shares 10 --avg-cost 5",
	RunE:    runHoldingAdd,
}

var holdingDraft dashboard.HoldingDraft

// interactive reports whether missing fields may be prompted for
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	rootCmd.AddCommand(holdingCmd)
	holdingCmd.AddCommand(holdingAddCmd)

	holdingAddCmd.Flags().StringVar(&holdingDraft.Name, "name", "", "holding name")
	holdingAddCmd.Flags().StringVar(&holdingDraft.Symbol, "symbol", "", "ticker symbol")
	holdingAddCmd.Flags().StringVar(&holdingDraft.Shares, "shares", "", "number of shares")
	holdingAddCmd.Flags().StringVar(&holdingDraft.AverageCost, "avg-cost", "", "average cost per share")
	holdingAddCmd.Flags().StringVar(&holdingDraft.CurrentPrice, "price", "", "current price per share (optional)")
}

func runHoldingAdd(cmd *cobra.Command, args []string) error {
	session, done := newSession()
	defer done()

	if !session.Writable() {
		return apperrors.ErrWritesDisabled
	}

	draft := holdingDraft
	if interactive() {
		fillMissing(&draft)
	}

	view, err := session.AddHolding(cmd.Context(), draft)
	if err != nil {
		return describe(err)
	}

	if getFormat() == "json" {
		return output.JSON(view)
	}

	req := draft.Request()
	output.Success(fmt.Sprintf("Added %s shares of %s", format.Shares(req.Shares), req.Symbol))
	output.Info(fmt.Sprintf("Total value %s · snapshot %d", format.Money(view.Totals.TotalValue), view.Version))
	return nil
}

func fillMissing(d *dashboard.HoldingDraft) {
	fields := map[string]*string{
		"name":         &d.Name,
		"symbol":       &d.Symbol,
		"shares":       &d.Shares,
		"average_cost": &d.AverageCost,
	}
	labels := map[string]string{
		"name":         "Name",
		"symbol":       "Symbol",
		"shares":       "Shares",
		"average_cost": "Average cost",
	}
	for _, name := range d.Missing() {
		*fields[name] = prompt(labels[name])
	}
}

// stdin is shared by every prompt so buffered answers carry over
var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Fprintf(output.Stdout, "%s: ", label)
	text, _ := stdin.ReadString('\n')
	return strings.TrimSpace(text)
}

// describe adds the missing field names to a validation error
func describe(err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		return err
	}
	if details, ok := appErr.Details.(map[string]any); ok {
		if missing, ok := details["missing"].([]string); ok && len(missing) > 0 {
			return fmt.Errorf("%s: %s", appErr.Message, strings.Join(missing, ", "))
		}
	}
	if appErr.Err != nil {
		return fmt.Errorf("%s: %v", appErr.Message, appErr.Err)
	}
	return fmt.Errorf("%s", appErr.Message)
}
