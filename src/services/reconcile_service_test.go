package services

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FExEVIL/tradeautopsy-sub003/src/database"
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/processors"
)

const tradebookExport = `Trade Date,Tradingsymbol,Quantity,Avg Price,Buy/Sell,Instrument Type,Lot Size,Exchange
15-03-2024,RELIANCE,10,2950.50,BUY,EQ,1,NSE
18-03-2024,RELIANCE,10,3010.00,SELL,EQ,1,NSE
18-03-2024,INFY,5,1500.00,BUY,EQ,1,NSE
`

func newTestService(t *testing.T) ReconcileService {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "reconcile_test.db"))
	matcher := processors.NewFIFOMatcher(processors.NewChargesCalculator())
	return NewReconcileService(matcher, cache.New(time.Minute, time.Minute))
}

func TestProcessImportEndToEnd(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ProcessImport(strings.NewReader(tradebookExport), "acct-1", "csv")
	if err != nil {
		t.Fatalf("ProcessImport: %v", err)
	}

	if result.JobID == "" {
		t.Error("result has no job ID")
	}
	if result.Mapping.Dialect != "generic" {
		t.Errorf("dialect = %q, want generic", result.Mapping.Dialect)
	}
	if result.Mapping.Confidence != 100 {
		t.Errorf("confidence = %v, want 100", result.Mapping.Confidence)
	}
	if len(result.Rejected) != 0 {
		t.Errorf("rejected = %v, want none", result.Rejected)
	}

	// RELIANCE open + realized, INFY open.
	if len(result.Ledger) != 3 {
		t.Fatalf("ledger = %d records, want 3", len(result.Ledger))
	}
	if result.Summary.RealizedCount != 1 || result.Summary.OpenPositionCount != 2 {
		t.Errorf("summary counts = %d realized / %d open, want 1/2",
			result.Summary.RealizedCount, result.Summary.OpenPositionCount)
	}
	if result.Summary.TotalPnL != 595 {
		t.Errorf("total pnl = %v, want 595", result.Summary.TotalPnL)
	}
}

func TestGetLedgerReadsBackFromDatabase(t *testing.T) {
	svc := newTestService(t)

	imported, err := svc.ProcessImport(strings.NewReader(tradebookExport), "acct-2", "csv")
	if err != nil {
		t.Fatalf("ProcessImport: %v", err)
	}

	// Force the DB path, not the cached result.
	svc.InvalidateAccountCache("acct-2")

	ledger, err := svc.GetLedger("acct-2")
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(ledger) != len(imported.Ledger) {
		t.Fatalf("ledger from DB = %d records, want %d", len(ledger), len(imported.Ledger))
	}
	for i, got := range ledger {
		want := imported.Ledger[i]
		if got.Symbol != want.Symbol || got.Status != want.Status || got.Quantity != want.Quantity {
			t.Errorf("record %d = %s %s %v, want %s %s %v",
				i, got.Symbol, got.Status, got.Quantity, want.Symbol, want.Status, want.Quantity)
		}
		if (got.GrossPnL == nil) != (want.GrossPnL == nil) {
			t.Errorf("record %d gross nil mismatch", i)
		} else if got.GrossPnL != nil && *got.GrossPnL != *want.GrossPnL {
			t.Errorf("record %d gross = %v, want %v", i, *got.GrossPnL, *want.GrossPnL)
		}
	}

	summary, err := svc.GetSummary("acct-2")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary != imported.Summary {
		t.Errorf("summary from DB = %+v, want %+v", summary, imported.Summary)
	}
}

func TestGetLedgerNoData(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetLedger("nobody")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestProcessLegsBypassesParsing(t *testing.T) {
	svc := newTestService(t)

	legs := []models.TradeLeg{
		{Date: "2024-03-15", Symbol: "NIFTY24MARFUT", Quantity: 1, Price: 22000,
			Side: models.SideBuy, InstrumentClass: models.ClassFuture, LotSize: 50, Segment: "NFO"},
	}
	result, err := svc.ProcessLegs(legs, nil, "acct-api")
	if err != nil {
		t.Fatalf("ProcessLegs: %v", err)
	}
	if result.Mapping.Dialect != "broker-api" || result.Mapping.Confidence != 100 {
		t.Errorf("mapping = %+v, want broker-api at full confidence", result.Mapping)
	}
	if len(result.Ledger) != 1 || result.Ledger[0].Status != models.StatusOpen {
		t.Errorf("ledger = %+v, want single open position", result.Ledger)
	}
}

func TestProcessImportUnknownSource(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessImport(strings.NewReader(tradebookExport), "acct-3", "fix4.2")
	if !errors.Is(err, ErrParsingFailed) {
		t.Errorf("err = %v, want ErrParsingFailed", err)
	}
}
