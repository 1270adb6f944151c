package model

// HoldingRecord is the user's position in one fund. It is owned by the
// store and mutated only through the trade applicator or a direct edit.
// A record whose share is zero means "no holding" and is deleted rather
// than kept around.
type HoldingRecord struct {
	Share      *float64 `json:"share"`
	CostAmount *float64 `json:"costAmount"`
	// CostUnit is persisted redundantly for convenience; CostAmount is
	// authoritative and the two are kept consistent on write.
	CostUnit       *float64 `json:"costUnit"`
	RealizedProfit *float64 `json:"realizedProfit"`
	// StartDate, when set, rebases "total holding profit" on the NAV at
	// this date instead of the cost unit.
	StartDate string `json:"startDate,omitempty"`
}

// HoldingMetrics is the computed profit/loss view of a holding. It is
// recomputed on every refresh and never persisted. Nil fields mean the
// figure could not be determined from the available data; partial results
// are valid and expected.
type HoldingMetrics struct {
	Share           float64
	CostAmount      *float64
	CostUnit        *float64
	Amount          float64
	ProfitToday     float64
	ProfitTotal     *float64
	ProfitRate      *float64
	ProfitYesterday *float64
	CurrentNav      float64
	UsedEstimate    bool
}
