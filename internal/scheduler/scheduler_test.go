package scheduler

import (
	"context"
	"strings"
	"testing"

	"FundSentinel/internal/collector"
	"FundSentinel/internal/model"
	"FundSentinel/internal/store"
	"FundSentinel/internal/tracker"
)

func newTestScheduler() *Scheduler {
	fetcher := &collector.MockFetcher{
		Quotes: map[string]*model.FundQuoteSnapshot{
			"000001": {
				Code:               "000001",
				Name:               "华夏成长混合",
				ConfirmedNav:       model.Num(1.5),
				ConfirmedNavDate:   "2024-01-11",
				ConfirmedChangePct: model.Num(1.0),
			},
		},
	}
	tr := tracker.New(store.NewMemoryStore(), fetcher)
	return NewScheduler(context.Background(), tr, nil)
}

func TestHandleCommandHelp(t *testing.T) {
	s := newTestScheduler()
	for _, cmd := range []string{"", "随便说点什么", "/unknown"} {
		if reply := s.HandleCommand(cmd); !strings.Contains(reply, "可用命令") {
			t.Errorf("%q: expected help text, got %q", cmd, reply)
		}
	}
}

func TestHandleCommandWatchAndReport(t *testing.T) {
	s := newTestScheduler()

	if reply := s.HandleCommand("/watch abc"); !strings.Contains(reply, "用法") {
		t.Errorf("invalid code must show usage, got %q", reply)
	}
	if reply := s.HandleCommand("/watch 000001 华夏成长混合"); !strings.Contains(reply, "已关注") {
		t.Errorf("watch reply = %q", reply)
	}

	report := s.HandleCommand("/report")
	if !strings.Contains(report, "000001") {
		t.Errorf("report missing watched fund: %q", report)
	}

	if reply := s.HandleCommand("/unwatch 000001"); !strings.Contains(reply, "已取消") {
		t.Errorf("unwatch reply = %q", reply)
	}
	if reply := s.HandleCommand("/report"); !strings.Contains(reply, "暂无") {
		t.Errorf("empty report = %q", reply)
	}
}

func TestHandleCommandTradeFlow(t *testing.T) {
	s := newTestScheduler()

	if reply := s.HandleCommand("/buy 000001 1500"); !strings.Contains(reply, "用法") {
		t.Errorf("missing price must show usage, got %q", reply)
	}

	reply := s.HandleCommand("/buy 000001 1500 1.5")
	if !strings.Contains(reply, "买入成功") {
		t.Fatalf("buy reply = %q", reply)
	}
	if !strings.Contains(reply, "1000.00") {
		t.Errorf("buy of 1500 at 1.5 should report 1000 shares: %q", reply)
	}

	reply = s.HandleCommand("/trades 000001")
	if !strings.Contains(reply, "买入") {
		t.Errorf("trade history = %q", reply)
	}

	// Oversell is rejected with the ledger's reason.
	reply = s.HandleCommand("/sell 000001 2000 1.6")
	if !strings.Contains(reply, "交易失败") {
		t.Errorf("oversell reply = %q", reply)
	}

	reply = s.HandleCommand("/sell 000001 1000 1.6 0.5%")
	if !strings.Contains(reply, "卖出成功") || !strings.Contains(reply, "已清仓") {
		t.Errorf("liquidating sell reply = %q", reply)
	}
}
