package notifier

import (
	"fmt"
	"strings"
	"time"

	"FundSentinel/internal/model"
	"FundSentinel/internal/tracker"
)

// Unknown figures render as a placeholder, never as a zero.
const placeholder = "--"

func money(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%+.2f", *v)
}

func pct(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

// changePct picks the display day-change for one fund: the alternate
// estimate when its coverage qualifies it, then the primary estimate, then
// the confirmed change.
func changePct(snap *model.FundQuoteSnapshot) *float64 {
	if snap == nil {
		return nil
	}
	if snap.EstimateCoverage != nil && *snap.EstimateCoverage > 0.05 && snap.AltEstimateChangePct != nil {
		return snap.AltEstimateChangePct
	}
	if snap.EstimateChangePct != nil {
		return snap.EstimateChangePct
	}
	return snap.ConfirmedChangePct
}

// FormatPortfolioReport renders the full holdings report for Telegram.
func FormatPortfolioReport(statuses []tracker.FundStatus, summary tracker.Summary, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>FundSentinel 持仓报告</b> | %s\n\n", now.Format("2006-01-02 15:04")))

	for _, st := range statuses {
		name := st.Name
		if name == "" {
			name = st.Code
		}
		b.WriteString(fmt.Sprintf("<b>%s</b> (%s)\n", name, st.Code))

		if st.Snapshot == nil {
			b.WriteString("  数据获取失败\n\n")
			continue
		}

		m := st.Metrics
		if m != nil {
			navLabel := "净值"
			if m.UsedEstimate {
				navLabel = "估值"
			}
			b.WriteString(fmt.Sprintf("  %s: %.4f (%s)\n", navLabel, m.CurrentNav, pct(changePct(st.Snapshot))))
			b.WriteString(fmt.Sprintf("  持有金额: %.2f | 今日: %+.2f\n", m.Amount, m.ProfitToday))
			b.WriteString(fmt.Sprintf("  昨日: %s | 持有: %s (%s)\n",
				money(m.ProfitYesterday), money(m.ProfitTotal), pct(m.ProfitRate)))
		} else {
			// Watch-only or NAV unresolved: quote line only.
			nav := placeholder
			if st.Snapshot.EstimateNav != nil {
				nav = fmt.Sprintf("%.4f", *st.Snapshot.EstimateNav)
			} else if st.Snapshot.ConfirmedNav != nil {
				nav = fmt.Sprintf("%.4f", *st.Snapshot.ConfirmedNav)
			}
			b.WriteString(fmt.Sprintf("  净值: %s (%s)\n", nav, pct(changePct(st.Snapshot))))
		}
		b.WriteString("\n")
	}

	if summary.Count > 0 {
		b.WriteString("─────────────────\n")
		b.WriteString(fmt.Sprintf("💰 <b>汇总</b> (%d 只持仓)\n", summary.Count))
		b.WriteString(fmt.Sprintf("  总金额: %.2f\n", summary.Amount))
		b.WriteString(fmt.Sprintf("  今日收益: %+.2f | 昨日收益: %s\n", summary.ProfitToday, money(summary.ProfitYesterday)))
		b.WriteString(fmt.Sprintf("  持有收益: %s | 收益率: %s\n", money(summary.ProfitTotal), pct(summary.ReturnRate)))
	}

	return b.String()
}

// FormatTradeReceipt confirms an applied trade.
func FormatTradeReceipt(code, name string, ins *model.TradeInstruction, realizedDelta float64, liquidated bool) string {
	var b strings.Builder
	action := "买入"
	if ins.Kind == model.TradeSell {
		action = "卖出"
	}
	if name == "" {
		name = code
	}
	b.WriteString(fmt.Sprintf("✅ <b>%s成功</b> %s (%s)\n\n", action, name, code))
	b.WriteString(fmt.Sprintf("份额: %.2f | 价格: %.4f\n", ins.Share, ins.Price))
	if ins.Amount != nil {
		b.WriteString(fmt.Sprintf("金额: %.2f\n", *ins.Amount))
	}
	if ins.FeeRatePct > 0 {
		b.WriteString(fmt.Sprintf("费率: %.2f%%\n", ins.FeeRatePct))
	}
	if ins.Kind == model.TradeSell {
		b.WriteString(fmt.Sprintf("本次落袋收益: %+.2f\n", realizedDelta))
	}
	if liquidated {
		b.WriteString("已清仓\n")
	}
	return b.String()
}

// FormatSearchResults renders fund search hits.
func FormatSearchResults(results []model.FundSearchResult) string {
	if len(results) == 0 {
		return "未找到匹配的基金"
	}
	var b strings.Builder
	b.WriteString("🔍 <b>搜索结果</b>\n\n")
	limit := len(results)
	if limit > 10 {
		limit = 10
	}
	for _, r := range results[:limit] {
		b.WriteString(fmt.Sprintf("%s  %s", r.Code, r.Name))
		if r.Type != "" {
			b.WriteString(fmt.Sprintf(" (%s)", r.Type))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTradeHistory renders the recorded trades for one fund.
func FormatTradeHistory(code string, recs []model.TradeRecord) string {
	if len(recs) == 0 {
		return fmt.Sprintf("%s 暂无交易记录", code)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📒 <b>交易记录</b> %s\n\n", code))
	for _, r := range recs {
		action := "买入"
		if r.Kind == model.TradeSell {
			action = "卖出"
		}
		b.WriteString(fmt.Sprintf("%s %s 份额 %.2f @ %.4f", r.Date, action, r.Share, r.Price))
		if r.Amount != nil {
			b.WriteString(fmt.Sprintf(" 金额 %.2f", *r.Amount))
		}
		b.WriteString("\n")
	}
	return b.String()
}
