package types

import (
	"strconv"

	"github.com/Rohianon/equishare-dashboard/pkg/dashboard"
	"github.com/Rohianon/equishare-dashboard/pkg/layout"
	"github.com/Rohianon/equishare-dashboard/pkg/portfolio"
)

// PortfolioResponse is the data of GET /api/v1/portfolio
type PortfolioResponse struct {
	Portfolio *portfolio.ViewModel `json:"portfolio"`
	Writable  bool                 `json:"writable"`
}

// AddHoldingRequest is the body of POST /api/v1/holdings. Numeric fields may
// be JSON numbers or strings.
type AddHoldingRequest struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Shares       any    `json:"shares"`
	AverageCost  any    `json:"average_cost"`
	CurrentPrice any    `json:"current_price,omitempty"`
}

// Draft converts the request into the form draft the session validates
func (r AddHoldingRequest) Draft() dashboard.HoldingDraft {
	return dashboard.HoldingDraft{
		Name:         r.Name,
		Symbol:       r.Symbol,
		Shares:       text(r.Shares),
		AverageCost:  text(r.AverageCost),
		CurrentPrice: text(r.CurrentPrice),
	}
}

// UpdateBalanceRequest is the body of PATCH /api/v1/account. Balance may be
// a JSON number or a string; anything else is rejected by validation.
type UpdateBalanceRequest struct {
	Balance any `json:"balance"`
}

// Draft converts the request into the balance form draft
func (r UpdateBalanceRequest) Draft() dashboard.BalanceDraft {
	return dashboard.BalanceDraft{Amount: text(r.Balance)}
}

func text(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return ""
}

// LayoutRequest is what the page reports after a one column render
type LayoutRequest struct {
	Viewport      layout.Viewport `json:"viewport"`
	ContentHeight int             `json:"content_height"`
}

// LayoutResponse is the column decision
type LayoutResponse struct {
	Columns    layout.Columns `json:"columns"`
	Breakpoint int            `json:"breakpoint"`
}
