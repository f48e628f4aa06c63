package dashboard

import (
	"strings"

	"github.com/Rohianon/equishare-dashboard/pkg/backend"
	"github.com/Rohianon/equishare-dashboard/pkg/numeric"
)

// HoldingDraft is the add-holding form as typed by the user. Fields stay
// strings until submission so a failed submit can hand them back unchanged.
type HoldingDraft struct {
	Name         string `json:"name" form:"name"`
	Symbol       string `json:"symbol" form:"symbol"`
	Shares       string `json:"shares" form:"shares"`
	AverageCost  string `json:"average_cost" form:"average_cost"`
	CurrentPrice string `json:"current_price,omitempty" form:"current_price"`
}

// Missing lists the required fields that are empty, by wire name
func (d HoldingDraft) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"symbol", d.Symbol},
		{"shares", d.Shares},
		{"average_cost", d.AverageCost},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Request coerces the draft into a create call. Unparsable numbers become 0;
// current_price is sent only when supplied.
func (d HoldingDraft) Request() backend.CreateHoldingRequest {
	req := backend.CreateHoldingRequest{
		Name:        strings.TrimSpace(d.Name),
		Symbol:      strings.TrimSpace(d.Symbol),
		Shares:      numeric.Float(d.Shares),
		AverageCost: numeric.Float(d.AverageCost),
	}
	if strings.TrimSpace(d.CurrentPrice) != "" {
		p := numeric.Float(d.CurrentPrice)
		req.CurrentPrice = &p
	}
	return req
}

// BalanceDraft is the update-balance form
type BalanceDraft struct {
	Amount string `json:"amount" form:"amount"`
}

// Parse returns the amount when it is a non-empty number
func (d BalanceDraft) Parse() (float64, bool) {
	return numeric.Parse(d.Amount)
}
