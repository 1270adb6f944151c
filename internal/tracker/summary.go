package tracker

import (
	"sort"

	"FundSentinel/internal/model"
)

// Summary aggregates the holdings with computed metrics into group totals.
// Nullable fields stay nil when no holding contributed a figure, so reports
// can render a placeholder instead of a misleading zero.
type Summary struct {
	Count           int
	Amount          float64
	ProfitToday     float64
	ProfitYesterday *float64
	ProfitTotal     *float64
	Cost            *float64
	ReturnRate      *float64 // percent, ProfitTotal / Cost
}

// Summarize totals the statuses that carry metrics. Watch-only funds and
// holdings with unresolvable NAVs are skipped.
func Summarize(statuses []FundStatus) Summary {
	var s Summary
	add := func(acc **float64, v float64) {
		if *acc == nil {
			*acc = model.Num(v)
			return
		}
		**acc += v
	}

	for _, st := range statuses {
		m := st.Metrics
		if m == nil {
			continue
		}
		s.Count++
		s.Amount += m.Amount
		s.ProfitToday += m.ProfitToday
		if m.ProfitYesterday != nil {
			add(&s.ProfitYesterday, *m.ProfitYesterday)
		}
		if m.ProfitTotal != nil {
			add(&s.ProfitTotal, *m.ProfitTotal)
		}
		if m.CostAmount != nil {
			add(&s.Cost, *m.CostAmount)
		}
	}

	if s.Cost != nil && *s.Cost > 0 && s.ProfitTotal != nil {
		s.ReturnRate = model.Num(*s.ProfitTotal / *s.Cost * 100)
	}
	return s
}

// SortKey selects the metric a fund list is ordered by.
type SortKey string

const (
	SortByAmount          SortKey = "amount"
	SortByProfitToday     SortKey = "profitToday"
	SortByProfitYesterday SortKey = "profitYesterday"
	SortByProfitTotal     SortKey = "profitTotal"
	SortByChange          SortKey = "change"
)

// sortValue extracts the key's value from a status. ok is false when the
// fund has no figure for the key; those always sort last.
func sortValue(st FundStatus, key SortKey) (float64, bool) {
	m := st.Metrics
	switch key {
	case SortByAmount:
		if m == nil {
			return 0, false
		}
		return m.Amount, true
	case SortByProfitToday:
		if m == nil {
			return 0, false
		}
		return m.ProfitToday, true
	case SortByProfitYesterday:
		if m == nil || m.ProfitYesterday == nil {
			return 0, false
		}
		return *m.ProfitYesterday, true
	case SortByProfitTotal:
		if m == nil || m.ProfitTotal == nil {
			return 0, false
		}
		return *m.ProfitTotal, true
	case SortByChange:
		if st.Snapshot == nil {
			return 0, false
		}
		if st.Snapshot.EstimateChangePct != nil {
			return *st.Snapshot.EstimateChangePct, true
		}
		if st.Snapshot.ConfirmedChangePct != nil {
			return *st.Snapshot.ConfirmedChangePct, true
		}
		return 0, false
	}
	return 0, false
}

// SortStatuses orders statuses by key, descending. Funds without a figure
// for the key keep their relative order at the end of the list.
func SortStatuses(statuses []FundStatus, key SortKey) {
	sort.SliceStable(statuses, func(i, j int) bool {
		vi, oki := sortValue(statuses[i], key)
		vj, okj := sortValue(statuses[j], key)
		if oki != okj {
			return oki
		}
		return vi > vj
	})
}
