package events

// HoldingAddedPayload is the payload for portfolio.holding.added.v1 events
type HoldingAddedPayload struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	Shares       float64  `json:"shares"`
	AverageCost  float64  `json:"average_cost"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	// SnapshotVersion is the version of the refetched snapshot
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// BalanceUpdatedPayload is the payload for portfolio.balance.updated.v1 events
type BalanceUpdatedPayload struct {
	Balance         float64 `json:"balance"`
	SnapshotVersion uint64  `json:"snapshot_version"`
}
