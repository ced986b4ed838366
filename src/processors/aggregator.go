package processors

import (
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/utils"
)

// Summarize derives the portfolio aggregate from a full ledger. It is a pure
// function: running it twice on an unchanged ledger yields identical output.
// Gross and net P&L sum over realized records only; charges sum over every
// record, open positions included.
func Summarize(ledger []models.MatchedTrade) models.Summary {
	var s models.Summary
	for _, rec := range ledger {
		s.TotalCharges += rec.Charges
		if rec.GrossPnL == nil {
			s.OpenPositionCount++
			continue
		}
		s.RealizedCount++
		s.TotalPnL += *rec.GrossPnL
		if rec.NetPnL != nil {
			s.NetPnL += *rec.NetPnL
		}
	}
	s.TotalPnL = utils.Round2(s.TotalPnL)
	s.TotalCharges = utils.Round2(s.TotalCharges)
	s.NetPnL = utils.Round2(s.NetPnL)
	return s
}
