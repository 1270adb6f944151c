package valuation

import (
	"time"

	"FundSentinel/internal/model"
)

// CalculateHoldingMetrics derives the full profit/loss metric set for one
// holding from a quote snapshot, the stored holding record and an optional
// chronological NAV history. It returns nil when there is nothing to
// compute: no share count, or no NAV resolvable from the snapshot.
//
// Daily profit figures are computed by reversing the reported percentage
// change out of the position amount (amount - amount/(1+pct/100)) instead
// of differencing two NAVs. The upstream source rounds NAV and percentage
// separately, and this keeps the displayed profit consistent with the
// displayed percentage.
func CalculateHoldingMetrics(snap *model.FundQuoteSnapshot, holding *model.HoldingRecord, history []model.NavHistoryPoint, now time.Time, tradingDay bool) *model.HoldingMetrics {
	if holding == nil || holding.Share == nil {
		return nil
	}
	share := *holding.Share

	res := ResolveCurrentNav(snap, now, tradingDay)
	if res.CurrentNav == nil {
		return nil
	}
	currentNav := *res.CurrentNav

	// Cost basis reconciliation: costAmount is authoritative, costUnit is
	// derived from it whenever possible so there is one source of truth.
	var costAmount, costUnit *float64
	switch {
	case holding.CostAmount != nil:
		costAmount = holding.CostAmount
		if share > 0 {
			costUnit = model.Num(*holding.CostAmount / share)
		} else {
			costUnit = model.Num(0)
		}
	case holding.CostUnit != nil:
		costAmount = model.Num(*holding.CostUnit * share)
		costUnit = holding.CostUnit
	}

	amount := share * currentNav

	m := &model.HoldingMetrics{
		Share:        share,
		CostAmount:   costAmount,
		CostUnit:     costUnit,
		Amount:       amount,
		CurrentNav:   currentNav,
		UsedEstimate: res.UsedEstimate,
	}

	m.ProfitToday = profitToday(snap, res, amount)
	m.ProfitTotal = profitTotal(holding, history, share, currentNav)
	if costAmount != nil && *costAmount > 0 && m.ProfitTotal != nil {
		m.ProfitRate = model.Num(*m.ProfitTotal / *costAmount * 100)
	}
	m.ProfitYesterday = profitYesterday(snap, res, history, share)

	return m
}

// reverseOut recovers the day's profit from a percentage change:
// given today's amount and pct, yesterday's amount was amount/(1+pct/100).
func reverseOut(amount, pct float64) float64 {
	denom := 1 + pct/100
	if denom == 0 {
		return 0
	}
	return amount - amount/denom
}

func profitToday(snap *model.FundQuoteSnapshot, res Resolution, amount float64) float64 {
	if !res.UsedEstimate {
		if !res.HasTodayConfirmed {
			// Confirmed NAV is for a prior day and the estimate is not yet
			// trusted: there is no today's-movement signal at all.
			return 0
		}
		// Prefer the official confirmed change over the generic estimate field.
		rate := 0.0
		if snap.ConfirmedChangePct != nil {
			rate = *snap.ConfirmedChangePct
		} else if snap.EstimateChangePct != nil {
			rate = *snap.EstimateChangePct
		}
		return reverseOut(amount, rate)
	}

	pct := 0.0
	if altEstimateUsable(snap) && snap.AltEstimateChangePct != nil {
		pct = *snap.AltEstimateChangePct
	} else if snap.EstimateChangePct != nil {
		pct = *snap.EstimateChangePct
	}
	return reverseOut(amount, pct)
}

func profitTotal(holding *model.HoldingRecord, history []model.NavHistoryPoint, share, currentNav float64) *float64 {
	realized := 0.0
	if holding.RealizedProfit != nil {
		realized = *holding.RealizedProfit
	}

	// When a position start date is set, rebase the floating profit on the
	// NAV of the day just before the position was opened.
	if holding.StartDate != "" && history != nil {
		if baseNav := baseNavBefore(history, holding.StartDate); baseNav != nil {
			return model.Num(share*(currentNav-*baseNav) + realized)
		}
	}

	if holding.CostUnit != nil || holding.CostAmount != nil {
		costUnit := 0.0
		switch {
		case holding.CostAmount != nil && share > 0:
			costUnit = *holding.CostAmount / share
		case holding.CostAmount != nil:
			costUnit = 0
		default:
			costUnit = *holding.CostUnit
		}
		return model.Num((currentNav-costUnit)*share + realized)
	}
	if holding.RealizedProfit != nil {
		return model.Num(realized)
	}
	return nil
}

// baseNavBefore returns the NAV of the point immediately before the first
// history point dated on or after startDate, or nil when no such baseline
// exists (the start date predates the whole series, or lies beyond it).
func baseNavBefore(history []model.NavHistoryPoint, startDate string) *float64 {
	for i, p := range history {
		if p.Date >= startDate {
			if i == 0 {
				return nil
			}
			return model.Num(history[i-1].Nav)
		}
	}
	return nil
}

// profitYesterday reconstructs the prior trading day's profit, display only.
// It relies exclusively on confirmed percentage figures: using the intraday
// estimate percent here would double-count today's movement as yesterday's.
func profitYesterday(snap *model.FundQuoteSnapshot, res Resolution, history []model.NavHistoryPoint, share float64) *float64 {
	if snap == nil || snap.ConfirmedNav == nil {
		return nil
	}
	confirmedAmount := share * *snap.ConfirmedNav

	if !res.HasTodayConfirmed {
		// The latest confirmed NAV is yesterday's (or older); its change
		// percent is exactly yesterday's movement.
		if snap.ConfirmedChangePct != nil {
			return model.Num(reverseOut(confirmedAmount, *snap.ConfirmedChangePct))
		}
		if n := len(history); n >= 1 && history[n-1].ChangePct != nil {
			return model.Num(reverseOut(confirmedAmount, *history[n-1].ChangePct))
		}
		return nil
	}

	// Today's confirmed NAV is already out, so yesterday is the
	// second-to-last history point.
	if n := len(history); n >= 2 {
		y := history[n-2]
		if y.ChangePct != nil {
			return model.Num(reverseOut(share*y.Nav, *y.ChangePct))
		}
	}
	return nil
}
