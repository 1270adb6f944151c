// Package ledger applies buy and sell instructions to holding records using
// average-cost bookkeeping. Rejections are plain errors and never leave a
// partially mutated holding behind; callers surface them to the user.
package ledger

import (
	"errors"
	"math"

	"FundSentinel/internal/model"
)

// ShareEpsilon absorbs floating-point rounding when a sell requests the
// whole position.
const ShareEpsilon = 1e-6

var (
	ErrNonPositiveShare = errors.New("trade share must be positive")
	ErrNoPosition       = errors.New("no shares held to sell")
	ErrOversell         = errors.New("sell share exceeds held share")
)

// Result is the outcome of applying a trade.
type Result struct {
	// Next is the holding after the trade, nil when the position was fully
	// liquidated (a zero-share record is deleted, never retained).
	Next *model.HoldingRecord
	// RealizedDelta is the profit locked in by this trade; zero for buys.
	RealizedDelta float64
	Liquidated    bool
}

// Apply runs one trade instruction against the current holding state and
// returns the next state. current may be nil for a first buy. Apply is a
// pure transition function; it is the caller's job to serialize concurrent
// trades on the same holding.
func Apply(current *model.HoldingRecord, ins *model.TradeInstruction) (*Result, error) {
	if ins == nil || !(ins.Share > 0) {
		return nil, ErrNonPositiveShare
	}
	switch ins.Kind {
	case model.TradeSell:
		return applySell(current, ins)
	default:
		return applyBuy(current, ins)
	}
}

func applyBuy(current *model.HoldingRecord, ins *model.TradeInstruction) (*Result, error) {
	curShare, curCost, curRealized := unpack(current)

	grossCost := ins.Price * ins.Share
	if ins.Amount != nil {
		grossCost = *ins.Amount
	}

	nextShare := curShare + ins.Share
	nextCost := curCost + grossCost
	next := &model.HoldingRecord{
		Share:          model.Num(nextShare),
		CostAmount:     model.Num(nextCost),
		RealizedProfit: model.Num(curRealized),
	}
	if nextShare > 0 {
		next.CostUnit = model.Num(nextCost / nextShare)
	}
	if current != nil {
		next.StartDate = current.StartDate
	}
	return &Result{Next: next}, nil
}

func applySell(current *model.HoldingRecord, ins *model.TradeInstruction) (*Result, error) {
	curShare, curCost, curRealized := unpack(current)
	if !(curShare > 0) {
		return nil, ErrNoPosition
	}
	if ins.Share > curShare+ShareEpsilon {
		return nil, ErrOversell
	}
	sellShare := math.Min(ins.Share, curShare)

	// Pro-rata cost of the sold shares: average-cost method, no lot tracking.
	sellRatio := sellShare / curShare
	costOfSold := curCost * sellRatio

	// Net proceeds. A target redemption amount is scaled down when the
	// requested share was clamped, so a rounding overshoot at full
	// liquidation doesn't inflate the realized profit.
	proceeds := sellShare * ins.Price
	if ins.Amount != nil {
		proceeds = *ins.Amount * (sellShare / ins.Share)
	}

	realizedDelta := proceeds - costOfSold
	nextShare := curShare - sellShare
	nextCost := curCost - costOfSold
	nextRealized := curRealized + realizedDelta

	if nextShare <= ShareEpsilon {
		return &Result{RealizedDelta: realizedDelta, Liquidated: true}, nil
	}

	next := &model.HoldingRecord{
		Share:          model.Num(nextShare),
		CostAmount:     model.Num(nextCost),
		CostUnit:       model.Num(nextCost / nextShare),
		RealizedProfit: model.Num(nextRealized),
	}
	if current != nil {
		next.StartDate = current.StartDate
	}
	return &Result{Next: next, RealizedDelta: realizedDelta}, nil
}

// unpack reads the current share, cost amount and realized profit with the
// same fallbacks the calculator uses: cost amount preferred, unit cost times
// share otherwise, zero when neither is known.
func unpack(h *model.HoldingRecord) (share, costAmount, realized float64) {
	if h == nil {
		return 0, 0, 0
	}
	if h.Share != nil {
		share = *h.Share
	}
	switch {
	case h.CostAmount != nil:
		costAmount = *h.CostAmount
	case h.CostUnit != nil:
		costAmount = *h.CostUnit * share
	}
	if h.RealizedProfit != nil {
		realized = *h.RealizedProfit
	}
	return share, costAmount, realized
}
