package store

import (
	"path/filepath"
	"testing"

	"FundSentinel/internal/model"
)

func TestNormalizeHolding(t *testing.T) {
	t.Run("amount authoritative over unit", func(t *testing.T) {
		n := NormalizeHolding(&model.HoldingRecord{
			Share:      model.Num(100),
			CostAmount: model.Num(1500),
			CostUnit:   model.Num(99), // stale, must be recomputed
		})
		if n.CostUnit == nil || *n.CostUnit != 15 {
			t.Errorf("costUnit = %v, want 15", n.CostUnit)
		}
	})

	t.Run("amount derived from unit", func(t *testing.T) {
		n := NormalizeHolding(&model.HoldingRecord{
			Share:    model.Num(100),
			CostUnit: model.Num(1.5),
		})
		if n.CostAmount == nil || *n.CostAmount != 150 {
			t.Errorf("costAmount = %v, want 150", n.CostAmount)
		}
	})

	t.Run("empty record collapses to nil", func(t *testing.T) {
		if NormalizeHolding(&model.HoldingRecord{}) != nil {
			t.Error("empty record should normalize to nil")
		}
		if NormalizeHolding(nil) != nil {
			t.Error("nil should stay nil")
		}
	})
}

// stores returns both implementations so the same scenarios cover each.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestHoldingRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveHolding("000001", &model.HoldingRecord{
				Share:      model.Num(1000),
				CostAmount: model.Num(1400),
				StartDate:  "2024-01-02",
			}); err != nil {
				t.Fatal(err)
			}

			h, err := s.Holding("000001")
			if err != nil {
				t.Fatal(err)
			}
			if h == nil || h.Share == nil || *h.Share != 1000 {
				t.Fatalf("holding = %+v", h)
			}
			if h.CostUnit == nil || *h.CostUnit != 1.4 {
				t.Errorf("costUnit = %v, want normalized 1.4", h.CostUnit)
			}
			if h.StartDate != "2024-01-02" {
				t.Errorf("startDate = %q", h.StartDate)
			}

			all, err := s.Holdings()
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 1 {
				t.Errorf("holdings count = %d", len(all))
			}

			missing, err := s.Holding("999999")
			if err != nil {
				t.Fatal(err)
			}
			if missing != nil {
				t.Error("unknown code should return nil, nil")
			}
		})
	}
}

func TestSaveHoldingEmptyDeletes(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveHolding("000001", &model.HoldingRecord{Share: model.Num(10)}); err != nil {
				t.Fatal(err)
			}
			if err := s.SaveHolding("000001", nil); err != nil {
				t.Fatal(err)
			}
			h, err := s.Holding("000001")
			if err != nil {
				t.Fatal(err)
			}
			if h != nil {
				t.Error("saving nil should delete the holding")
			}
		})
	}
}

func TestTradeRecords(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			recs := []model.TradeRecord{
				{ID: "a", Code: "000001", Kind: model.TradeBuy, Date: "2024-01-02",
					CreatedAt: 1, Share: 1000, Amount: model.Num(1500), Price: 1.5,
					Mode: model.ModeByAmount},
				{ID: "b", Code: "000001", Kind: model.TradeSell, Date: "2024-01-10",
					CreatedAt: 2, Share: 400, Price: 1.6, Mode: model.ModeByShare},
			}
			for i := range recs {
				if err := s.AppendTrade(&recs[i]); err != nil {
					t.Fatal(err)
				}
			}

			got, err := s.Trades("000001")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
				t.Fatalf("trades = %+v", got)
			}
			if got[0].Amount == nil || *got[0].Amount != 1500 {
				t.Errorf("amount = %v", got[0].Amount)
			}
			if got[1].Amount != nil {
				t.Errorf("share-mode sell should keep nil amount, got %v", got[1].Amount)
			}

			if err := s.DeleteTrade("000001", "a"); err != nil {
				t.Fatal(err)
			}
			got, err = s.Trades("000001")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0].ID != "b" {
				t.Fatalf("after delete: %+v", got)
			}
		})
	}
}

func TestWatchlist(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.AddWatch("000001", "华夏成长混合"); err != nil {
				t.Fatal(err)
			}
			if err := s.AddWatch("161725", "招商中证白酒"); err != nil {
				t.Fatal(err)
			}
			// Re-adding updates the name without duplicating.
			if err := s.AddWatch("000001", "华夏成长混合A"); err != nil {
				t.Fatal(err)
			}

			list, err := s.Watchlist()
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 2 {
				t.Fatalf("watchlist = %+v", list)
			}
			if list[0].Code != "000001" || list[0].Name != "华夏成长混合A" {
				t.Errorf("entry 0 = %+v", list[0])
			}

			if err := s.RemoveWatch("000001"); err != nil {
				t.Fatal(err)
			}
			list, err = s.Watchlist()
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 || list[0].Code != "161725" {
				t.Errorf("after remove = %+v", list)
			}
		})
	}
}
