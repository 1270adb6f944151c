package model

import "time"

// FundQuoteSnapshot is a point-in-time market data snapshot for one fund.
// A fresh snapshot fully replaces the previous one for its code; snapshots
// are never merged field by field.
type FundQuoteSnapshot struct {
	Code string
	Name string

	// Last officially published NAV and the date it applies to.
	ConfirmedNav       *float64
	ConfirmedNavDate   string // YYYY-MM-DD, empty when unknown
	ConfirmedChangePct *float64

	// Intraday estimate.
	EstimateNav       *float64
	EstimateChangePct *float64
	EstimateTime      string

	// Alternate higher-fidelity estimate; takes precedence over the primary
	// estimate when EstimateCoverage > 0.05.
	EstimateCoverage     *float64
	AltEstimateNav       *float64
	AltEstimateChangePct *float64

	FetchedAt time.Time
}

// NavHistoryPoint is one entry in a fund's historical NAV series,
// ordered oldest to newest and unique by date.
type NavHistoryPoint struct {
	Date      string   `json:"date"`
	Nav       float64  `json:"nav"`
	ChangePct *float64 `json:"changePct"`
}

// FundSearchResult is a single hit from the fund search API.
type FundSearchResult struct {
	Code string
	Name string
	Type string
}

// Num returns a pointer to v. Convenience for building nullable fields.
func Num(v float64) *float64 { return &v }
