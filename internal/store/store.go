// Package store persists holdings, trade records and the watchlist. To the
// rest of the system it is an opaque key-value layer keyed by fund code;
// input normalization happens here so the computation core can assume
// consistent records.
package store

import "FundSentinel/internal/model"

// WatchEntry is one tracked fund.
type WatchEntry struct {
	Code string
	Name string
}

// Store is the persistence interface.
type Store interface {
	// Holding returns the record for code, or nil when none exists.
	Holding(code string) (*model.HoldingRecord, error)
	Holdings() (map[string]*model.HoldingRecord, error)
	// SaveHolding normalizes and upserts the record. A nil or empty record
	// deletes the holding: zero positions are never retained.
	SaveHolding(code string, h *model.HoldingRecord) error
	DeleteHolding(code string) error

	Trades(code string) ([]model.TradeRecord, error)
	AppendTrade(rec *model.TradeRecord) error
	DeleteTrade(code, id string) error

	Watchlist() ([]WatchEntry, error)
	AddWatch(code, name string) error
	RemoveWatch(code string) error

	Close() error
}

// NormalizeHolding reconciles the redundant cost fields so costAmount and
// costUnit stay consistent: the amount is authoritative when both are set.
// Returns nil when the record carries no data at all, which callers treat
// as a delete.
func NormalizeHolding(h *model.HoldingRecord) *model.HoldingRecord {
	if h == nil {
		return nil
	}
	if h.Share == nil && h.CostAmount == nil && h.CostUnit == nil &&
		h.RealizedProfit == nil && h.StartDate == "" {
		return nil
	}
	n := *h
	if n.Share != nil {
		share := *n.Share
		switch {
		case n.CostAmount != nil && share > 0:
			n.CostUnit = model.Num(*n.CostAmount / share)
		case n.CostAmount == nil && n.CostUnit != nil:
			n.CostAmount = model.Num(*n.CostUnit * share)
		}
	}
	return &n
}
