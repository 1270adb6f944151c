package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"FundSentinel/internal/collector"
	"FundSentinel/internal/ledger"
	"FundSentinel/internal/model"
	"FundSentinel/internal/notifier"
	"FundSentinel/internal/tracker"
	"FundSentinel/internal/valuation"
)

// Scheduler manages the cron tasks and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Tracker  *tracker.Tracker
	Notifier *notifier.TelegramNotifier
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, tr *tracker.Tracker, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Tracker:  tr,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// RegisterAll registers the intraday estimate report and the evening
// confirmed-NAV report. The cron expressions keep both on weekdays; the
// intraday task additionally skips non-trading days on its own.
func (s *Scheduler) RegisterAll(intradayCron, dailyCron string) error {
	if _, err := s.Cron.AddFunc(intradayCron, s.intradayTask); err != nil {
		return fmt.Errorf("register intraday task: %w", err)
	}
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunReportNow refreshes and reports immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.trySend(s.report())
}

func (s *Scheduler) intradayTask() {
	if !valuation.IsWeekdayTradingDay(time.Now()) {
		return
	}
	log.Println("[INFO] running intraday report")
	s.trySend(s.report())
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily report")
	s.trySend(s.report())
}

func (s *Scheduler) report() string {
	statuses, err := s.Tracker.Refresh()
	if err != nil {
		log.Printf("[ERROR] refresh: %v", err)
		return fmt.Sprintf("❌ 刷新失败: %v", err)
	}
	if len(statuses) == 0 {
		return "暂无持仓或关注的基金，使用 /watch 添加"
	}
	tracker.SortStatuses(statuses, tracker.SortByAmount)
	summary := tracker.Summarize(statuses)
	return notifier.FormatPortfolioReport(statuses, summary, time.Now())
}

const helpText = `可用命令:
• 查看持仓 或 /report
• /watch 基金代码 [名称]
• /unwatch 基金代码
• /search 关键字
• /buy 基金代码 金额 净值 [费率%]
• /sell 基金代码 份额 净值 [费率%]
• /trades 基金代码`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}

	switch fields[0] {
	case "查看持仓", "/report", "/holdings":
		return s.report()
	case "/watch":
		return s.handleWatch(fields[1:])
	case "/unwatch":
		return s.handleUnwatch(fields[1:])
	case "/search":
		return s.handleSearch(fields[1:])
	case "/buy":
		return s.handleTrade(model.TradeBuy, fields[1:])
	case "/sell":
		return s.handleTrade(model.TradeSell, fields[1:])
	case "/trades":
		return s.handleTrades(fields[1:])
	default:
		return helpText
	}
}

func (s *Scheduler) handleWatch(args []string) string {
	if len(args) < 1 || !collector.IsValidFundCode(args[0]) {
		return "用法: /watch 基金代码 [名称]"
	}
	name := ""
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}
	if err := s.Tracker.Watch(args[0], name); err != nil {
		log.Printf("[ERROR] watch %s: %v", args[0], err)
		return fmt.Sprintf("添加失败: %v", err)
	}
	return fmt.Sprintf("已关注 %s", args[0])
}

func (s *Scheduler) handleUnwatch(args []string) string {
	if len(args) != 1 || !collector.IsValidFundCode(args[0]) {
		return "用法: /unwatch 基金代码"
	}
	if err := s.Tracker.Unwatch(args[0]); err != nil {
		log.Printf("[ERROR] unwatch %s: %v", args[0], err)
		return fmt.Sprintf("取消失败: %v", err)
	}
	return fmt.Sprintf("已取消关注 %s", args[0])
}

func (s *Scheduler) handleSearch(args []string) string {
	if len(args) == 0 {
		return "用法: /search 关键字"
	}
	results, err := s.Tracker.Search(strings.Join(args, " "))
	if err != nil {
		log.Printf("[ERROR] search: %v", err)
		return fmt.Sprintf("搜索失败: %v", err)
	}
	return notifier.FormatSearchResults(results)
}

// handleTrade parses "code value price [feePct]" where value is an amount
// for buys and a share count for sells, then routes the resolved
// instruction through the tracker.
func (s *Scheduler) handleTrade(kind model.TradeKind, args []string) string {
	usage := "用法: /buy 基金代码 金额 净值 [费率%]"
	if kind == model.TradeSell {
		usage = "用法: /sell 基金代码 份额 净值 [费率%]"
	}
	if len(args) < 3 || !collector.IsValidFundCode(args[0]) {
		return usage
	}

	value, err1 := strconv.ParseFloat(args[1], 64)
	price, err2 := strconv.ParseFloat(args[2], 64)
	if err1 != nil || err2 != nil {
		return usage
	}
	var feeRate float64
	if len(args) > 3 {
		feeRate, _ = strconv.ParseFloat(strings.TrimSuffix(args[3], "%"), 64)
	}

	in := ledger.FormInput{
		Kind:       kind,
		Price:      price,
		FeeRatePct: feeRate,
		Date:       valuation.FormatYmd(time.Now()),
	}
	if kind == model.TradeBuy {
		in.Mode = model.ModeByAmount
		in.Amount = value
	} else {
		in.Mode = model.ModeByShare
		in.Share = value
	}

	ins, err := ledger.ResolveInstruction(in)
	if err != nil {
		return fmt.Sprintf("交易无效: %v", err)
	}
	res, err := s.Tracker.ApplyTrade(args[0], "", ins)
	if err != nil {
		return fmt.Sprintf("交易失败: %v", err)
	}
	return notifier.FormatTradeReceipt(args[0], "", ins, res.RealizedDelta, res.Liquidated)
}

func (s *Scheduler) handleTrades(args []string) string {
	if len(args) != 1 || !collector.IsValidFundCode(args[0]) {
		return "用法: /trades 基金代码"
	}
	recs, err := s.Tracker.Trades(args[0])
	if err != nil {
		log.Printf("[ERROR] trades %s: %v", args[0], err)
		return fmt.Sprintf("查询失败: %v", err)
	}
	return notifier.FormatTradeHistory(args[0], recs)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
