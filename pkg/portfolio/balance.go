package portfolio

import (
	"github.com/PaesslerAG/jsonpath"

	"github.com/Rohianon/equishare-dashboard/pkg/numeric"
)

// balanceAccessor reads one candidate account total from a snapshot document
type balanceAccessor struct {
	source BalanceSource
	path   string
}

// balanceAccessors lists the candidate fields in priority order. The first one
// holding a JSON number wins.
var balanceAccessors = []balanceAccessor{
	{"account.balance", `$["account"]["balance"]`},
	{"total", `$["total"]`},
	{"account_total", `$["account_total"]`},
	{"Account.total", `$["Account"]["total"]`},
	{"account.total", `$["account"]["total"]`},
	{"totals.account", `$["totals"]["account"]`},
	{"AccountBalance", `$["AccountBalance"]`},
}

// BalanceSources returns the candidate field names in the order they are tried
func BalanceSources() []BalanceSource {
	out := make([]BalanceSource, len(balanceAccessors))
	for i, a := range balanceAccessors {
		out[i] = a.source
	}
	return out
}

// ReconcileBalance picks the authoritative total value of the account. When no
// candidate field holds a number, marketValue is returned with SourceComputed.
func ReconcileBalance(s *Snapshot, marketValue float64) (float64, BalanceSource) {
	if s == nil || s.Doc == nil {
		return marketValue, SourceComputed
	}
	for _, a := range balanceAccessors {
		v, err := jsonpath.Get(a.path, s.Doc)
		if err != nil {
			continue
		}
		if numeric.IsNumber(v) {
			return numeric.Float(v), a.source
		}
	}
	return marketValue, SourceComputed
}
