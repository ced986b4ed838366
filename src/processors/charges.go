package processors

import (
	"github.com/shopspring/decimal"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

// Charge model rates. Brokerage is percentage-capped, STT applies to sells
// only, stamp duty to buys only, GST to the broker-side components.
const (
	brokerageRate   = 0.0003   // 0.03% of effective value
	brokerageCap    = 20.0     // flat cap per leg
	sttRate         = 0.001    // 0.1%, SELL legs only
	exchangeTxnRate = 0.0000325 // 0.00325%
	gstRate         = 0.18     // on brokerage + exchange txn charge
	stampDutyRate   = 0.00003  // 0.003%, BUY legs only
)

// ChargesCalculator computes per-leg transaction costs.
type ChargesCalculator struct{}

func NewChargesCalculator() *ChargesCalculator {
	return &ChargesCalculator{}
}

// Calculate returns the total transaction charge for one leg. The five
// components are summed first and the total is rounded to 2 decimals exactly
// once at the end; rounding per component would compound the error.
func (c *ChargesCalculator) Calculate(leg models.TradeLeg) float64 {
	ev := EffectiveValue(leg)

	brokerage := brokerageRate * ev
	if brokerage > brokerageCap {
		brokerage = brokerageCap
	}

	var stt float64
	if leg.Side == models.SideSell {
		stt = sttRate * ev
	}

	exchangeTxn := exchangeTxnRate * ev
	gst := gstRate * (brokerage + exchangeTxn)

	var stampDuty float64
	if leg.Side == models.SideBuy {
		stampDuty = stampDutyRate * ev
	}

	total := brokerage + stt + exchangeTxn + gst + stampDuty
	return decimal.NewFromFloat(total).Round(2).InexactFloat64()
}

// EffectiveValue is the cash value charges are computed on: premium basis
// (price × lot size) for options, notional (price × quantity) otherwise.
func EffectiveValue(leg models.TradeLeg) float64 {
	if leg.InstrumentClass == models.ClassOption {
		return leg.Price * float64(leg.LotSize)
	}
	return leg.Price * leg.Quantity
}
