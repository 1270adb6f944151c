package ledger

import (
	"errors"
	"math"
	"testing"

	"FundSentinel/internal/model"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func holdingOf(share, costAmount, realized float64) *model.HoldingRecord {
	return &model.HoldingRecord{
		Share:          model.Num(share),
		CostAmount:     model.Num(costAmount),
		RealizedProfit: model.Num(realized),
	}
}

func TestBuy_AveragesCost(t *testing.T) {
	res, err := Apply(nil, &model.TradeInstruction{
		Kind: model.TradeBuy, Share: 10, Amount: model.Num(100),
	})
	if err != nil {
		t.Fatalf("first buy: %v", err)
	}
	if res.Next.CostUnit == nil || !almost(*res.Next.CostUnit, 10) {
		t.Errorf("costUnit = %v, want 10", res.Next.CostUnit)
	}

	res, err = Apply(res.Next, &model.TradeInstruction{
		Kind: model.TradeBuy, Share: 10, Amount: model.Num(120),
	})
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}
	if *res.Next.Share != 20 {
		t.Errorf("share = %v, want 20", *res.Next.Share)
	}
	if !almost(*res.Next.CostAmount, 220) {
		t.Errorf("costAmount = %v, want 220", *res.Next.CostAmount)
	}
	if !almost(*res.Next.CostUnit, 11) {
		t.Errorf("costUnit = %v, want (100+120)/20 = 11", *res.Next.CostUnit)
	}
}

func TestBuy_GrossCostFromPriceWhenNoAmount(t *testing.T) {
	res, err := Apply(nil, &model.TradeInstruction{
		Kind: model.TradeBuy, Share: 100, Price: 1.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !almost(*res.Next.CostAmount, 150) {
		t.Errorf("costAmount = %v, want price*share = 150", *res.Next.CostAmount)
	}
}

func TestBuy_KeepsStartDateAndRealized(t *testing.T) {
	cur := holdingOf(100, 1000, 42)
	cur.StartDate = "2024-01-05"
	res, err := Apply(cur, &model.TradeInstruction{
		Kind: model.TradeBuy, Share: 10, Amount: model.Num(110),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Next.StartDate != "2024-01-05" {
		t.Errorf("startDate = %q, want carried over", res.Next.StartDate)
	}
	if !almost(*res.Next.RealizedProfit, 42) {
		t.Errorf("realizedProfit = %v, want unchanged 42", *res.Next.RealizedProfit)
	}
}

func TestBuy_RejectsNonPositiveShare(t *testing.T) {
	for _, share := range []float64{0, -5} {
		_, err := Apply(nil, &model.TradeInstruction{Kind: model.TradeBuy, Share: share, Price: 1})
		if !errors.Is(err, ErrNonPositiveShare) {
			t.Errorf("share=%v: err = %v, want ErrNonPositiveShare", share, err)
		}
	}
}

func TestSell_ProRataCost(t *testing.T) {
	cur := holdingOf(100, 1000, 0)
	res, err := Apply(cur, &model.TradeInstruction{
		Kind: model.TradeSell, Share: 40, Amount: model.Num(500),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !almost(res.RealizedDelta, 100) {
		t.Errorf("realizedDelta = %v, want 500-400 = 100", res.RealizedDelta)
	}
	if !almost(*res.Next.CostAmount, 600) {
		t.Errorf("costAmount = %v, want 600", *res.Next.CostAmount)
	}
	if !almost(*res.Next.Share, 60) {
		t.Errorf("share = %v, want 60", *res.Next.Share)
	}
	if !almost(*res.Next.CostUnit, 10) {
		t.Errorf("costUnit = %v, want unchanged 10", *res.Next.CostUnit)
	}
	if !almost(*res.Next.RealizedProfit, 100) {
		t.Errorf("realizedProfit = %v, want 100", *res.Next.RealizedProfit)
	}
}

func TestSell_FullLiquidationDeletesHolding(t *testing.T) {
	cur := holdingOf(100, 1000, 0)
	res, err := Apply(cur, &model.TradeInstruction{
		Kind: model.TradeSell, Share: 100, Price: 12,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Liquidated || res.Next != nil {
		t.Fatal("expected the position to be deleted")
	}
	if !almost(res.RealizedDelta, 200) {
		t.Errorf("realizedDelta = %v, want 1200-1000 = 200", res.RealizedDelta)
	}
}

func TestSell_EpsilonOvershootClamps(t *testing.T) {
	cur := holdingOf(100, 1000, 0)
	// Rounding artifact: requested a hair more than held.
	res, err := Apply(cur, &model.TradeInstruction{
		Kind: model.TradeSell, Share: 100 + 5e-7, Amount: model.Num(1200),
	})
	if err != nil {
		t.Fatalf("overshoot within epsilon must clamp, got %v", err)
	}
	if !res.Liquidated {
		t.Fatal("expected full liquidation")
	}
	// The net target is scaled by clampedShare/requestedShare.
	wantProceeds := 1200 * (100 / (100 + 5e-7))
	if !almost(res.RealizedDelta, wantProceeds-1000) {
		t.Errorf("realizedDelta = %v, want %v", res.RealizedDelta, wantProceeds-1000)
	}
}

func TestSell_OversellRejected(t *testing.T) {
	cur := holdingOf(100, 1000, 7)
	_, err := Apply(cur, &model.TradeInstruction{
		Kind: model.TradeSell, Share: 101, Price: 12,
	})
	if !errors.Is(err, ErrOversell) {
		t.Fatalf("err = %v, want ErrOversell", err)
	}
	// The holding must be untouched.
	if *cur.Share != 100 || *cur.CostAmount != 1000 || *cur.RealizedProfit != 7 {
		t.Error("rejected sell mutated the holding")
	}
}

func TestSell_RejectsWithoutPosition(t *testing.T) {
	_, err := Apply(nil, &model.TradeInstruction{Kind: model.TradeSell, Share: 10, Price: 1})
	if !errors.Is(err, ErrNoPosition) {
		t.Fatalf("err = %v, want ErrNoPosition", err)
	}
	_, err = Apply(holdingOf(0, 0, 0), &model.TradeInstruction{Kind: model.TradeSell, Share: 10, Price: 1})
	if !errors.Is(err, ErrNoPosition) {
		t.Fatalf("err = %v, want ErrNoPosition", err)
	}
}

func TestSell_CostUnitFallbackWhenNoCostAmount(t *testing.T) {
	cur := &model.HoldingRecord{
		Share:    model.Num(100),
		CostUnit: model.Num(10),
	}
	res, err := Apply(cur, &model.TradeInstruction{
		Kind: model.TradeSell, Share: 40, Amount: model.Num(500),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !almost(res.RealizedDelta, 100) {
		t.Errorf("realizedDelta = %v, want 100 via unit-cost fallback", res.RealizedDelta)
	}
}
