package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/Rohianon/equishare-dashboard/pkg/format"
	"github.com/Rohianon/equishare-dashboard/pkg/layout"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	MoneyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

// Stdout is where every helper writes; tests replace it
var Stdout io.Writer = os.Stdout

func JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(Stdout, string(data))
	return nil
}

func table(headers []string, rows [][]string) string {
	var b strings.Builder
	t := tablewriter.NewWriter(&b)
	t.SetHeader(headers)
	t.SetBorder(true)
	t.SetRowLine(false)
	t.SetAutoFormatHeaders(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.SetCenterSeparator("│")
	t.SetColumnSeparator("│")
	t.SetRowSeparator("─")
	t.SetHeaderLine(true)
	t.SetTablePadding(" ")
	t.AppendBulk(rows)
	t.Render()
	return b.String()
}

func keyValue(pairs [][]string) string {
	maxKeyLen := 0
	for _, pair := range pairs {
		if len(pair[0]) > maxKeyLen {
			maxKeyLen = len(pair[0])
		}
	}

	var b strings.Builder
	for _, pair := range pairs {
		key := MutedStyle.Render(fmt.Sprintf("%-*s", maxKeyLen, pair[0]))
		fmt.Fprintf(&b, "%s  %s\n", key, pair[1])
	}
	return b.String()
}

func KeyValue(pairs [][]string) {
	fmt.Fprint(Stdout, keyValue(pairs))
}

func Success(msg string) {
	fmt.Fprintln(Stdout, SuccessStyle.Render("✓ ")+msg)
}

func Error(msg string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ ")+msg)
}

func Warning(msg string) {
	fmt.Fprintln(Stdout, WarningStyle.Render("⚠ ")+msg)
}

func Info(msg string) {
	fmt.Fprintln(Stdout, MutedStyle.Render(msg))
}

func Header(msg string) {
	fmt.Fprintln(Stdout, HeaderStyle.Render(msg))
}

// Signed colours a money amount by its sign
func Signed(v float64) string {
	if v < 0 {
		return ErrorStyle.Render(format.Money(v))
	}
	return SuccessStyle.Render(format.Money(v))
}

// SignedPercent colours a percentage by its sign
func SignedPercent(v float64) string {
	if v < 0 {
		return ErrorStyle.Render(format.Percent(v))
	}
	return SuccessStyle.Render(format.Percent(v))
}

// Summary renders the portfolio totals
func Summary(view *portfolio.ViewModel) string {
	t := view.Totals
	return HeaderStyle.Render("Summary") + "\n\n" + keyValue([][]string{
		{"Total value", MoneyStyle.Render(format.Money(t.TotalValue))},
		{"Market value", ValueStyle.Render(format.Money(t.MarketValue))},
		{"Cash", Signed(t.Cash)},
		{"Total P&L", Signed(t.TotalPnL)},
	}) + "\n" + MutedStyle.Render(fmt.Sprintf("Balance from %s · snapshot %d", view.BalanceSource, view.Version))
}

// Holdings renders the holdings table
func Holdings(view *portfolio.ViewModel) string {
	if len(view.Holdings) == 0 {
		return HeaderStyle.Render("Holdings") + "\n\n" + MutedStyle.Render("No holdings yet.")
	}

	rows := make([][]string, len(view.Holdings))
	for i, h := range view.Holdings {
		rows[i] = []string{
			h.Name + " " + MutedStyle.Render(h.Symbol),
			format.Shares(h.Shares),
			format.Money(h.Avg),
			format.Money(h.Price),
			format.Money(h.Value),
			Signed(h.PnL),
			SignedPercent(h.PnLPercent),
		}
	}

	return HeaderStyle.Render("Holdings") + "\n\n" +
		strings.TrimRight(table([]string{"Name", "Shares", "Avg cost", "Price", "Value", "P&L", "P&L %"}, rows), "\n")
}

// Dashboard renders the whole view with the given number of columns. One
// column stacks the summary above the holdings; two place them side by side.
func Dashboard(view *portfolio.ViewModel, cols layout.Columns) string {
	summary := Summary(view)
	holdings := Holdings(view)

	if cols == layout.Double {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().PaddingRight(4).Render(summary),
			holdings,
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, "", holdings)
}

// Columns describes a layout decision
func Columns(cols layout.Columns) string {
	return format.Columns(int(cols))
}

// Height is the number of lines s occupies
func Height(s string) int {
	return lipgloss.Height(s)
}
