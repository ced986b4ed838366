package kite

import (
	"testing"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	kitemodels "github.com/zerodha/gokiteconnect/v4/models"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

func kiteTime(year int, month time.Month, day int) kitemodels.Time {
	return kitemodels.Time{Time: time.Date(year, month, day, 10, 30, 0, 0, time.UTC)}
}

func completedOrder(symbol, exchange, txnType string, qty, price float64) kiteconnect.Order {
	return kiteconnect.Order{
		OrderID:         "240315000001",
		Status:          "COMPLETE",
		TradingSymbol:   symbol,
		Exchange:        exchange,
		TransactionType: txnType,
		FilledQuantity:  qty,
		AveragePrice:    price,
		OrderTimestamp:  kiteTime(2024, time.March, 15),
	}
}

func TestConvertOrders(t *testing.T) {
	adapter := NewAdapter(map[string]int{"NIFTY24MAR22000CE": 50})

	legs, rejected := adapter.ConvertOrders([]kiteconnect.Order{
		completedOrder("RELIANCE", "NSE", "BUY", 10, 2950.5),
		completedOrder("NIFTY24MAR22000CE", "NFO", "SELL", 2, 115.25),
	})

	if len(rejected) != 0 {
		t.Fatalf("rejected = %v, want none", rejected)
	}
	if len(legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(legs))
	}

	eq := legs[0]
	if eq.Date != "2024-03-15" {
		t.Errorf("date = %s, want 2024-03-15", eq.Date)
	}
	if eq.Symbol != "RELIANCE" || eq.Side != models.SideBuy {
		t.Errorf("leg = %s %s, want RELIANCE BUY", eq.Symbol, eq.Side)
	}
	if eq.InstrumentClass != models.ClassEquity || eq.LotSize != 1 {
		t.Errorf("class/lot = %s/%d, want EQUITY/1", eq.InstrumentClass, eq.LotSize)
	}

	opt := legs[1]
	if opt.Side != models.SideSell {
		t.Errorf("side = %s, want SELL", opt.Side)
	}
	if opt.InstrumentClass != models.ClassOption {
		t.Errorf("class = %s, want OPTION", opt.InstrumentClass)
	}
	if opt.LotSize != 50 {
		t.Errorf("lot size = %d, want 50 from the lot size table", opt.LotSize)
	}
	if opt.Segment != "NFO" {
		t.Errorf("segment = %s, want NFO", opt.Segment)
	}
}

func TestConvertOrdersRejects(t *testing.T) {
	adapter := NewAdapter(nil)

	pending := completedOrder("TCS", "NSE", "BUY", 5, 4100)
	pending.Status = "OPEN"

	noTimestamp := completedOrder("INFY", "NSE", "BUY", 5, 1500)
	noTimestamp.OrderTimestamp = kitemodels.Time{}

	zeroQty := completedOrder("SBIN", "NSE", "SELL", 0, 780)
	noSymbol := completedOrder("  ", "NSE", "BUY", 5, 100)
	zeroPrice := completedOrder("ITC", "NSE", "BUY", 5, 0)

	legs, rejected := adapter.ConvertOrders([]kiteconnect.Order{
		pending, noTimestamp, zeroQty, noSymbol, zeroPrice,
	})

	if len(legs) != 0 {
		t.Fatalf("legs = %v, want none", legs)
	}
	wantReasons := []string{
		"order not complete",
		"missing timestamp",
		"non-positive quantity",
		"missing symbol",
		"non-positive price",
	}
	if len(rejected) != len(wantReasons) {
		t.Fatalf("rejected = %d, want %d", len(rejected), len(wantReasons))
	}
	for i, want := range wantReasons {
		if rejected[i].Reason != want {
			t.Errorf("reject %d reason = %q, want %q", i, rejected[i].Reason, want)
		}
		if rejected[i].Line != i+1 {
			t.Errorf("reject %d line = %d, want %d", i, rejected[i].Line, i+1)
		}
	}
}

func TestClassifyDerivativeSuffixes(t *testing.T) {
	tests := []struct {
		exchange, symbol string
		want             string
	}{
		{"NFO", "NIFTY24MARFUT", models.ClassFuture},
		{"NFO", "NIFTY24MAR22000CE", models.ClassOption},
		{"NFO", "BANKNIFTY24MAR47000PE", models.ClassOption},
		{"MCX", "CRUDEOIL24MARFUT", models.ClassFuture},
		{"NSE", "RELIANCE", models.ClassEquity},
		{"BSE", "TCS", models.ClassEquity},
	}
	for _, tt := range tests {
		if got := classify(tt.exchange, tt.symbol); got != tt.want {
			t.Errorf("classify(%s, %s) = %s, want %s", tt.exchange, tt.symbol, got, tt.want)
		}
	}
}
