package model

// TradeKind distinguishes buys from sells.
type TradeKind string

const (
	TradeBuy  TradeKind = "buy"
	TradeSell TradeKind = "sell"
)

// TradeMode records which field the user entered on the trade form.
type TradeMode string

const (
	ModeByAmount TradeMode = "amount"
	ModeByShare  TradeMode = "share"
)

// TradeInstruction is a fully resolved buy or sell action. Fee handling
// happens upstream when the instruction is built, so Amount is already the
// gross cost (buy) or the target net redemption amount (sell). When Amount
// is nil the applicator falls back to Price * Share.
type TradeInstruction struct {
	Kind       TradeKind
	Share      float64
	Amount     *float64
	Price      float64
	FeeRatePct float64
	Mode       TradeMode
	Date       string // YYYY-MM-DD
}

// TradeRecord is an append-only history entry kept per fund code.
type TradeRecord struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	FundName   string    `json:"fundName"`
	Kind       TradeKind `json:"kind"`
	Date       string    `json:"date"`
	CreatedAt  int64     `json:"createdAt"`
	Share      float64   `json:"share"`
	Amount     *float64  `json:"amount"`
	Price      float64   `json:"price"`
	FeeRatePct float64   `json:"feeRate"`
	Mode       TradeMode `json:"mode"`
}
