// Adapter for pre-structured Zerodha Kite Connect records. These bypass
// schema detection entirely: the broker API already labels every field, so
// the adapter only has to normalize and validate into trade legs.
//
// Fetching orders from the Kite API is the caller's job. The expected wiring
// is fetch, ConvertOrders, then hand the legs and rejects to the reconcile
// service's ProcessLegs.
package kite

import (
	"strings"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/parsers"
	"github.com/FExEVIL/tradeautopsy-sub003/src/utils"
)

// Adapter converts Kite Connect order records into normalized trade legs.
// LotSizes maps tradingsymbol to contract lot size for derivative legs;
// symbols not present default to lot size 1.
type Adapter struct {
	LotSizes map[string]int
}

func NewAdapter(lotSizes map[string]int) *Adapter {
	return &Adapter{LotSizes: lotSizes}
}

// ConvertOrders maps completed orders onto trade legs. Records that fail the
// same validation rules as parsed CSV rows are dropped onto the reject list,
// never raised as errors.
func (a *Adapter) ConvertOrders(orders []kiteconnect.Order) ([]models.TradeLeg, []models.RejectedRow) {
	var legs []models.TradeLeg
	var rejected []models.RejectedRow

	for i, order := range orders {
		line := i + 1
		if !strings.EqualFold(order.Status, "COMPLETE") {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "order not complete"})
			continue
		}

		if order.OrderTimestamp.Time.IsZero() {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "missing timestamp"})
			continue
		}
		date, ok := utils.NormalizeDate(order.OrderTimestamp.Time.Format("2006-01-02 15:04:05"))
		if !ok {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "unparseable date"})
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(order.TradingSymbol))
		if symbol == "" {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "missing symbol"})
			continue
		}

		quantity := order.FilledQuantity
		if quantity <= 0 {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "non-positive quantity"})
			continue
		}
		price := order.AveragePrice
		if price <= 0 {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: "non-positive price"})
			continue
		}

		lotSize := a.LotSizes[symbol]
		if lotSize < 1 {
			lotSize = 1
		}

		legs = append(legs, models.TradeLeg{
			Date:            date,
			Symbol:          symbol,
			Quantity:        quantity,
			Price:           price,
			Side:            parsers.NormalizeSide(order.TransactionType),
			InstrumentClass: classify(order.Exchange, symbol),
			LotSize:         lotSize,
			Segment:         order.Exchange,
		})
	}
	return legs, rejected
}

// classify derives the instrument class from the exchange segment and the
// derivative suffix Kite puts on NFO/BFO tradingsymbols.
func classify(exchange, symbol string) string {
	ex := strings.ToUpper(exchange)
	if ex == "NFO" || ex == "BFO" || ex == "MCX" {
		if strings.HasSuffix(symbol, "FUT") {
			return models.ClassFuture
		}
		if strings.HasSuffix(symbol, "CE") || strings.HasSuffix(symbol, "PE") {
			return models.ClassOption
		}
		return models.ClassFuture
	}
	return parsers.ClassifyInstrument("", exchange)
}
