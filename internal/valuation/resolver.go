// Package valuation holds the pure NAV and profit computations. Functions
// here never log and never fail for missing data; unknown figures come back
// as nil so callers can render placeholders instead of zeros.
package valuation

import (
	"time"

	"FundSentinel/internal/model"
)

// Resolution is the outcome of deciding which NAV is "current".
type Resolution struct {
	CurrentNav        *float64
	UsedEstimate      bool
	ConfirmedNavDate  string // empty when the snapshot has no usable date
	HasTodayConfirmed bool
	Today             string
	TradingDay        bool
}

// IsWeekdayTradingDay treats Monday through Friday as trading days.
// Exchange holidays are deliberately ignored; this is a known approximation,
// not a bug to fix silently.
func IsWeekdayTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// FormatYmd renders a time as YYYY-MM-DD.
func FormatYmd(t time.Time) string {
	return t.Format("2006-01-02")
}

// ymdAfter reports whether date a is strictly later than date b. Both must
// be YYYY-MM-DD strings, which makes the lexicographic compare valid.
func ymdAfter(a, b string) bool {
	if len(a) < 10 || len(b) < 10 {
		return false
	}
	return a[:10] > b[:10]
}

// ResolveCurrentNav decides whether "current NAV" means the last confirmed
// NAV or the intraday estimate, and returns the selected value.
//
// The estimate is used when the confirmed NAV date lags behind today, or,
// when no confirmed date exists at all, after 09:00 on a trading day (the
// pre-open estimate is too noisy to trust). When the estimate would be used
// but carries no number, the confirmed NAV is returned instead of nothing.
func ResolveCurrentNav(snap *model.FundQuoteSnapshot, now time.Time, tradingDay bool) Resolution {
	res := Resolution{
		Today:      FormatYmd(now),
		TradingDay: tradingDay,
	}
	if snap == nil {
		return res
	}

	hasConfirmedDate := len(snap.ConfirmedNavDate) >= 10
	if hasConfirmedDate {
		res.ConfirmedNavDate = snap.ConfirmedNavDate
		res.HasTodayConfirmed = snap.ConfirmedNavDate == res.Today
	}

	useEstimateByDate := hasConfirmedDate && ymdAfter(res.Today, snap.ConfirmedNavDate)
	useEstimateByTime := !hasConfirmedDate && tradingDay && now.Hour() >= 9
	res.UsedEstimate = useEstimateByDate || useEstimateByTime

	switch {
	case !res.UsedEstimate:
		res.CurrentNav = snap.ConfirmedNav
	case altEstimateUsable(snap) && snap.AltEstimateNav != nil:
		res.CurrentNav = snap.AltEstimateNav
	case snap.EstimateNav != nil:
		res.CurrentNav = snap.EstimateNav
	default:
		res.CurrentNav = snap.ConfirmedNav
	}
	return res
}

// altEstimateUsable reports whether the alternate estimate's coverage is
// high enough for it to override the primary estimate fields.
func altEstimateUsable(snap *model.FundQuoteSnapshot) bool {
	return snap.EstimateCoverage != nil && *snap.EstimateCoverage > 0.05
}
