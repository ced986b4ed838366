package processors

import (
	"sort"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/utils"
)

// openLot is one queue entry: a BUY leg and how much of it is still unmatched.
type openLot struct {
	buy       models.TradeLeg
	remaining float64
}

// FIFOMatcher matches opposite-side legs per symbol, oldest open BUY first.
// The per-symbol queues are owned by a single Process call and are not safe
// for concurrent mutation; callers running reconciliation for the same
// account from multiple workers must serialize those runs.
type FIFOMatcher struct {
	charges *ChargesCalculator
}

func NewFIFOMatcher(charges *ChargesCalculator) *FIFOMatcher {
	return &FIFOMatcher{charges: charges}
}

// Process consumes all legs and emits the ledger: one open record per BUY,
// one realized record per match, and one open-short record per unmatched
// SELL remainder. Given identical input, the output is fully deterministic.
func (m *FIFOMatcher) Process(legs []models.TradeLeg) []models.MatchedTrade {
	sorted := make([]models.TradeLeg, len(legs))
	copy(sorted, legs)
	sortLegs(sorted)

	queues := make(map[string][]openLot)
	var ledger []models.MatchedTrade

	for _, leg := range sorted {
		if leg.Side == models.SideBuy {
			queues[leg.Symbol] = append(queues[leg.Symbol], openLot{buy: leg, remaining: leg.Quantity})
			ledger = append(ledger, m.openRecord(leg))
			continue
		}
		ledger = append(ledger, m.matchSell(leg, queues)...)
	}
	return ledger
}

// matchSell walks the symbol's queue head-first until the SELL is exhausted
// or the queue is empty. A partially consumed head goes back to the head of
// the queue: it is still the oldest lot.
func (m *FIFOMatcher) matchSell(sell models.TradeLeg, queues map[string][]openLot) []models.MatchedTrade {
	var out []models.MatchedTrade
	remaining := sell.Quantity
	sellCharges := m.charges.Calculate(sell)

	for remaining > 0 && len(queues[sell.Symbol]) > 0 {
		head := queues[sell.Symbol][0]
		queues[sell.Symbol] = queues[sell.Symbol][1:]

		matched := utils.MinFloat(remaining, head.remaining)
		gross := grossPnL(sell.InstrumentClass, head.buy, sell, matched)

		// Charges are computed on the full original legs, never pro-rated
		// for partial matches; see TestPartialFillChargesNotProRated.
		charges := m.charges.Calculate(head.buy) + sellCharges
		net := gross - charges

		out = append(out, models.MatchedTrade{
			Symbol:          sell.Symbol,
			Status:          models.StatusRealized,
			InstrumentClass: sell.InstrumentClass,
			Quantity:        matched,
			EntryDate:       head.buy.Date,
			ExitDate:        sell.Date,
			EntryPrice:      head.buy.Price,
			ExitPrice:       sell.Price,
			GrossPnL:        &gross,
			Charges:         charges,
			NetPnL:          &net,
		})

		head.remaining -= matched
		if head.remaining > 0 {
			queues[sell.Symbol] = append([]openLot{head}, queues[sell.Symbol]...)
		}
		remaining -= matched
	}

	// Queue exhausted with quantity left: the remainder is one naked short,
	// a valid domain outcome, not an error.
	if remaining > 0 {
		out = append(out, models.MatchedTrade{
			Symbol:          sell.Symbol,
			Status:          models.StatusOpenShort,
			InstrumentClass: sell.InstrumentClass,
			Quantity:        remaining,
			ExitDate:        sell.Date,
			ExitPrice:       sell.Price,
			Charges:         sellCharges,
		})
	}
	return out
}

func (m *FIFOMatcher) openRecord(buy models.TradeLeg) models.MatchedTrade {
	return models.MatchedTrade{
		Symbol:          buy.Symbol,
		Status:          models.StatusOpen,
		InstrumentClass: buy.InstrumentClass,
		Quantity:        buy.Quantity,
		EntryDate:       buy.Date,
		EntryPrice:      buy.Price,
		Charges:         m.charges.Calculate(buy),
	}
}

// grossPnL applies the per-class P&L formula. The OPTION formula is lot-basis
// only and deliberately not scaled by the matched quantity; see
// TestMatchOptionLotBasisPnL before changing it.
func grossPnL(class string, buy, sell models.TradeLeg, matched float64) float64 {
	diff := sell.Price - buy.Price
	switch class {
	case models.ClassFuture:
		return diff * matched * float64(sell.LotSize)
	case models.ClassOption:
		return diff * float64(sell.LotSize)
	default:
		return diff * matched
	}
}

// sortLegs orders by date ascending with BUY before SELL on exact-date ties,
// so same-day opens can close same-day. The sort is stable: legs equal under
// this ordering keep their input order.
func sortLegs(legs []models.TradeLeg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if legs[i].Date != legs[j].Date {
			return legs[i].Date < legs[j].Date
		}
		return legs[i].Side == models.SideBuy && legs[j].Side == models.SideSell
	})
}
