package portfolio

import (
	"encoding/json"
	"fmt"
	"time"
)

// equitiesKey is the snapshot field holding the list of raw holdings
const equitiesKey = "Equities"

// DecodeSnapshot parses a backend document. A missing or null Equities field
// is an empty portfolio; any other non-array value is an error.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("snapshot is not a JSON object")
	}

	snap := &Snapshot{
		FetchedAt: time.Now().UTC(),
		Doc:       doc,
	}

	switch list := doc[equitiesKey].(type) {
	case nil:
		snap.Equities = []RawHolding{}
	case []any:
		snap.Equities = make([]RawHolding, 0, len(list))
		for i, item := range list {
			fields, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("snapshot %s[%d] is not an object", equitiesKey, i)
			}
			snap.Equities = append(snap.Equities, holdingFromFields(fields))
		}
	default:
		return nil, fmt.Errorf("snapshot %s is not an array", equitiesKey)
	}

	return snap, nil
}

// WithVersion returns a copy of s stamped with version. The holdings slice and
// document are shared, which is safe because neither is ever written.
func (s *Snapshot) WithVersion(version uint64) *Snapshot {
	cp := *s
	cp.Version = version
	return &cp
}

func holdingFromFields(fields map[string]any) RawHolding {
	return RawHolding{
		Name:         text(fields["name"]),
		Symbol:       text(fields["symbol"]),
		Shares:       fields["shares"],
		AverageCost:  fields["average_cost"],
		CurrentPrice: fields["current_price"],
		Price:        fields["price"],
	}
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
