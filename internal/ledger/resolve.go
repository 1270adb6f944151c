package ledger

import (
	"errors"

	"FundSentinel/internal/model"
)

var (
	ErrNonPositivePrice  = errors.New("price must be positive")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrFeeRateTooHigh    = errors.New("fee rate must be below 100%")
)

// FormInput is a raw trade form submission: one of Amount/Share is entered
// according to Mode, the other is derived here.
type FormInput struct {
	Kind       model.TradeKind
	Mode       model.TradeMode
	Amount     float64 // gross outlay (buy) or target net redemption (sell)
	Share      float64
	Price      float64
	FeeRatePct float64
	Date       string
}

// ResolveInstruction turns a form submission into a fully resolved trade
// instruction, applying the fee rate up front so the applicator only ever
// sees settled gross-cost / net-proceeds figures:
//
//	buy  by amount: net = amount/(1+r), share = net/price, gross = amount
//	buy  by share:  net = share*price,  gross = net*(1+r)
//	sell by amount: gross = amount/(1-r), share = gross/price, net = amount
//	sell by share:  gross = share*price, net = gross*(1-r)
//
// Buy fees are added to cost; sell fees come out of the proceeds.
func ResolveInstruction(in FormInput) (*model.TradeInstruction, error) {
	if !(in.Price > 0) {
		return nil, ErrNonPositivePrice
	}
	r := in.FeeRatePct / 100

	var share, amount float64
	switch {
	case in.Kind == model.TradeBuy && in.Mode == model.ModeByAmount:
		if !(in.Amount > 0) {
			return nil, ErrNonPositiveAmount
		}
		net := in.Amount / (1 + r)
		share = net / in.Price
		amount = in.Amount

	case in.Kind == model.TradeBuy:
		if !(in.Share > 0) {
			return nil, ErrNonPositiveShare
		}
		share = in.Share
		amount = in.Share * in.Price * (1 + r)

	case in.Mode == model.ModeByAmount: // sell
		if !(in.Amount > 0) {
			return nil, ErrNonPositiveAmount
		}
		if r >= 1 {
			return nil, ErrFeeRateTooHigh
		}
		gross := in.Amount / (1 - r)
		share = gross / in.Price
		amount = in.Amount

	default: // sell by share
		if !(in.Share > 0) {
			return nil, ErrNonPositiveShare
		}
		share = in.Share
		amount = in.Share * in.Price * (1 - r)
	}

	return &model.TradeInstruction{
		Kind:       in.Kind,
		Share:      share,
		Amount:     model.Num(amount),
		Price:      in.Price,
		FeeRatePct: in.FeeRatePct,
		Mode:       in.Mode,
		Date:       in.Date,
	}, nil
}
