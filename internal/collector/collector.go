package collector

import (
	"fmt"
	"log"
	"time"

	"FundSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Quotes    map[string]*model.FundQuoteSnapshot
	Histories map[string][]model.NavHistoryPoint
	Results   []model.FundSearchResult
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(code string) (*model.FundQuoteSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if snap, ok := m.Quotes[code]; ok {
		cp := *snap
		cp.FetchedAt = time.Now()
		return &cp, nil
	}
	return nil, fmt.Errorf("mock: no quote for %s", code)
}

func (m *MockFetcher) FetchHistory(code string) ([]model.NavHistoryPoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Histories[code], nil
}

func (m *MockFetcher) Search(string) ([]model.FundSearchResult, error) {
	return m.Results, m.Err
}

// Collector fetches quote snapshots for a set of fund codes. Per-fund
// failures are logged and skipped so one bad code doesn't starve the rest.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches a fresh snapshot for every code. Each snapshot fully
// replaces whatever the caller held for that code before; snapshots are
// never merged.
func (c *Collector) Collect(codes []string) map[string]*model.FundQuoteSnapshot {
	seen := make(map[string]bool, len(codes))
	out := make(map[string]*model.FundQuoteSnapshot, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		snap, err := c.Fetcher.FetchQuote(code)
		if err != nil {
			log.Printf("[WARN] collect %s: %v", code, err)
			continue
		}
		out[code] = snap
	}
	return out
}
