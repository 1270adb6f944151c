package store

import (
	"fmt"
	"sync"

	"FundSentinel/internal/model"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu       sync.Mutex
	holdings map[string]*model.HoldingRecord
	trades   map[string][]model.TradeRecord
	watch    []WatchEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		holdings: make(map[string]*model.HoldingRecord),
		trades:   make(map[string][]model.TradeRecord),
	}
}

func (m *MemoryStore) Holding(code string) (*model.HoldingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holdings[code]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (m *MemoryStore) Holdings() (map[string]*model.HoldingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*model.HoldingRecord, len(m.holdings))
	for code, h := range m.holdings {
		cp := *h
		out[code] = &cp
	}
	return out, nil
}

func (m *MemoryStore) SaveHolding(code string, h *model.HoldingRecord) error {
	n := NormalizeHolding(h)
	m.mu.Lock()
	defer m.mu.Unlock()
	if n == nil {
		delete(m.holdings, code)
		return nil
	}
	m.holdings[code] = n
	return nil
}

func (m *MemoryStore) DeleteHolding(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holdings, code)
	return nil
}

func (m *MemoryStore) Trades(code string) ([]model.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TradeRecord(nil), m.trades[code]...), nil
}

func (m *MemoryStore) AppendTrade(rec *model.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[rec.Code] = append(m.trades[rec.Code], *rec)
	return nil
}

func (m *MemoryStore) DeleteTrade(code, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.trades[code]
	for i, r := range recs {
		if r.ID == id {
			m.trades[code] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("trade %s/%s not found", code, id)
}

func (m *MemoryStore) Watchlist() ([]WatchEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WatchEntry(nil), m.watch...), nil
}

func (m *MemoryStore) AddWatch(code, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.watch {
		if e.Code == code {
			m.watch[i].Name = name
			return nil
		}
	}
	m.watch = append(m.watch, WatchEntry{Code: code, Name: name})
	return nil
}

func (m *MemoryStore) RemoveWatch(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.watch {
		if e.Code == code {
			m.watch = append(m.watch[:i:i], m.watch[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
