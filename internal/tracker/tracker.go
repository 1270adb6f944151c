// Package tracker ties the store, the market-data collector and the
// valuation core together. It owns the NAV history cache and serializes
// trade mutations so at most one is in flight per store.
package tracker

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"FundSentinel/internal/collector"
	"FundSentinel/internal/ledger"
	"FundSentinel/internal/model"
	"FundSentinel/internal/store"
	"FundSentinel/internal/valuation"
)

// FundStatus is the refreshed view of one tracked fund. Metrics is nil for
// watch-only funds and for holdings whose NAV could not be resolved.
type FundStatus struct {
	Code     string
	Name     string
	Snapshot *model.FundQuoteSnapshot
	Holding  *model.HoldingRecord
	Metrics  *model.HoldingMetrics
}

// Tracker orchestrates refreshes and trades.
type Tracker struct {
	store     store.Store
	collector *collector.Collector

	// tradeMu makes trade application single-writer: read-modify-write
	// against the store must not interleave.
	tradeMu sync.Mutex

	// histories caches full NAV series per fund code. History barely changes
	// intraday, so one fetch per code per process is enough.
	histMu    sync.Mutex
	histories map[string][]model.NavHistoryPoint

	now func() time.Time
}

func New(s store.Store, fetcher collector.Fetcher) *Tracker {
	return &Tracker{
		store:     s,
		collector: collector.NewCollector(fetcher),
		histories: make(map[string][]model.NavHistoryPoint),
		now:       time.Now,
	}
}

// trackedCodes returns every held or watched fund code with the best known
// display name, holdings first in the natural code order.
func (t *Tracker) trackedCodes(holdings map[string]*model.HoldingRecord) ([]string, map[string]string, error) {
	names := make(map[string]string)
	seen := make(map[string]bool)
	var codes []string

	for code := range holdings {
		codes = append(codes, code)
		seen[code] = true
	}
	sort.Strings(codes)

	watch, err := t.store.Watchlist()
	if err != nil {
		return nil, nil, fmt.Errorf("load watchlist: %w", err)
	}
	for _, e := range watch {
		names[e.Code] = e.Name
		if !seen[e.Code] {
			codes = append(codes, e.Code)
			seen[e.Code] = true
		}
	}
	return codes, names, nil
}

// history returns the cached NAV series for code, fetching it on first use.
// Failures are logged and return nil; profit math degrades to its cost-basis
// fallback in that case.
func (t *Tracker) history(code string) []model.NavHistoryPoint {
	t.histMu.Lock()
	defer t.histMu.Unlock()
	if pts, ok := t.histories[code]; ok {
		return pts
	}
	pts, err := t.collector.Fetcher.FetchHistory(code)
	if err != nil {
		log.Printf("[WARN] fetch history %s: %v", code, err)
		return nil
	}
	t.histories[code] = pts
	return pts
}

// Refresh fetches fresh snapshots for every tracked fund and recomputes
// holding metrics. Snapshots replace the previous state wholesale; funds
// whose fetch failed are returned without a snapshot.
func (t *Tracker) Refresh() ([]FundStatus, error) {
	holdings, err := t.store.Holdings()
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	codes, names, err := t.trackedCodes(holdings)
	if err != nil {
		return nil, err
	}

	snaps := t.collector.Collect(codes)
	now := t.now()
	tradingDay := valuation.IsWeekdayTradingDay(now)

	statuses := make([]FundStatus, 0, len(codes))
	for _, code := range codes {
		st := FundStatus{
			Code:     code,
			Name:     names[code],
			Snapshot: snaps[code],
			Holding:  holdings[code],
		}
		if st.Snapshot != nil && st.Snapshot.Name != "" {
			st.Name = st.Snapshot.Name
		}
		if st.Holding != nil {
			var history []model.NavHistoryPoint
			if st.Holding.StartDate != "" {
				history = t.history(code)
			}
			st.Metrics = valuation.CalculateHoldingMetrics(st.Snapshot, st.Holding, history, now, tradingDay)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// ApplyTrade runs one resolved trade instruction against the stored holding
// for code. On success the updated holding is persisted (or deleted when the
// position was fully closed) and an append-only trade record is written.
func (t *Tracker) ApplyTrade(code, fundName string, ins *model.TradeInstruction) (*ledger.Result, error) {
	t.tradeMu.Lock()
	defer t.tradeMu.Unlock()

	current, err := t.store.Holding(code)
	if err != nil {
		return nil, fmt.Errorf("load holding %s: %w", code, err)
	}

	res, err := ledger.Apply(current, ins)
	if err != nil {
		return nil, err
	}

	if res.Liquidated {
		if err := t.store.DeleteHolding(code); err != nil {
			return nil, fmt.Errorf("delete holding %s: %w", code, err)
		}
	} else {
		if err := t.store.SaveHolding(code, res.Next); err != nil {
			return nil, fmt.Errorf("save holding %s: %w", code, err)
		}
	}

	rec := &model.TradeRecord{
		ID:         uuid.NewString(),
		Code:       code,
		FundName:   fundName,
		Kind:       ins.Kind,
		Date:       ins.Date,
		CreatedAt:  t.now().Unix(),
		Share:      ins.Share,
		Amount:     ins.Amount,
		Price:      ins.Price,
		FeeRatePct: ins.FeeRatePct,
		Mode:       ins.Mode,
	}
	if err := t.store.AppendTrade(rec); err != nil {
		log.Printf("[WARN] record trade %s: %v", code, err)
	}

	log.Printf("[INFO] trade applied: %s %s share=%.2f price=%.4f liquidated=%v",
		ins.Kind, code, ins.Share, ins.Price, res.Liquidated)
	return res, nil
}

// Trades returns the recorded trade history for one fund.
func (t *Tracker) Trades(code string) ([]model.TradeRecord, error) {
	return t.store.Trades(code)
}

// Watch adds a fund to the watchlist; Unwatch removes it.
func (t *Tracker) Watch(code, name string) error { return t.store.AddWatch(code, name) }
func (t *Tracker) Unwatch(code string) error     { return t.store.RemoveWatch(code) }

// Search proxies fund search through the fetcher.
func (t *Tracker) Search(key string) ([]model.FundSearchResult, error) {
	return t.collector.Fetcher.Search(key)
}
