package parsers

import (
	"testing"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

func TestDetectSchemaFullConfidence(t *testing.T) {
	headers := []string{"Trade Date", "Tradingsymbol", "Qty", "Price", "Txn Type"}

	mapping := DetectSchema(headers, nil, "")

	if mapping.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", mapping.Confidence)
	}
	wantColumns := map[string]string{
		models.FieldDate:     "Trade Date",
		models.FieldSymbol:   "Tradingsymbol",
		models.FieldQuantity: "Qty",
		models.FieldPrice:    "Price",
		models.FieldSide:     "Txn Type",
	}
	for field, want := range wantColumns {
		if got := mapping.Column(field); got != want {
			t.Errorf("field %s mapped to %q, want %q", field, got, want)
		}
	}
}

func TestDetectSchemaVariantHeaders(t *testing.T) {
	headers := []string{"symbol", "trade_date", "quantity", "avg. price", "buy/sell", "Instrument Type", "Lot Size", "Exchange Segment"}

	mapping := DetectSchema(headers, nil, "")

	if mapping.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", mapping.Confidence)
	}
	if got := mapping.Column(models.FieldSide); got != "buy/sell" {
		t.Errorf("side mapped to %q, want %q", got, "buy/sell")
	}
	if got := mapping.Column(models.FieldInstrumentType); got != "Instrument Type" {
		t.Errorf("instrument type mapped to %q, want %q", got, "Instrument Type")
	}
	if got := mapping.Column(models.FieldLotSize); got != "Lot Size" {
		t.Errorf("lot size mapped to %q, want %q", got, "Lot Size")
	}
	if got := mapping.Column(models.FieldSegment); got != "Exchange Segment" {
		t.Errorf("segment mapped to %q, want %q", got, "Exchange Segment")
	}
}

func TestDetectSchemaPartialMappingIsNonFatal(t *testing.T) {
	headers := []string{"Scrip", "Qty", "Rate"}

	mapping := DetectSchema(headers, nil, "")

	if mapping.Confidence != 75 {
		t.Fatalf("confidence = %v, want 75", mapping.Confidence)
	}
	if got := mapping.Column(models.FieldSymbol); got != "Scrip" {
		t.Errorf("symbol mapped to %q, want %q", got, "Scrip")
	}
	if got := mapping.Column(models.FieldDate); got != "" {
		t.Errorf("date mapped to %q, want unmapped", got)
	}
}

func TestDetectSchemaHeaderClaimedOnce(t *testing.T) {
	// "Price" must go to the price field, not be reclaimed by a later field.
	headers := []string{"Date", "Symbol", "Qty", "Price"}

	mapping := DetectSchema(headers, nil, "")

	seen := make(map[string]string)
	for field, col := range mapping.Columns {
		if prev, dup := seen[col]; dup {
			t.Errorf("column %q claimed by both %s and %s", col, prev, field)
		}
		seen[col] = field
	}
}

func TestDetectSchemaInstrumentTypeKeepsOwnHeader(t *testing.T) {
	// An export with an "Instrument Type" column but no side column at all.
	// The instrument-type field must claim that header; the side field must
	// not grab it just because the name ends in "Type".
	headers := []string{"Trade Date", "Symbol", "Qty", "Price", "Instrument Type"}
	samples := []models.RawRow{
		{"Instrument Type": "FUT"},
		{"Instrument Type": "OPT"},
	}

	mapping := DetectSchema(headers, samples, "")

	if mapping.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", mapping.Confidence)
	}
	if got := mapping.Column(models.FieldInstrumentType); got != "Instrument Type" {
		t.Errorf("instrument type mapped to %q, want %q", got, "Instrument Type")
	}
	if got := mapping.Column(models.FieldSide); got != "" {
		t.Errorf("side mapped to %q, want unmapped", got)
	}
}

func TestDetectSchemaBareTypeHeaderIsSide(t *testing.T) {
	headers := []string{"Trade Date", "Symbol", "Qty", "Price", "Type"}

	mapping := DetectSchema(headers, nil, "")

	if got := mapping.Column(models.FieldSide); got != "Type" {
		t.Errorf("side mapped to %q, want %q", got, "Type")
	}
}

func TestDetectSchemaSideFromSampleValues(t *testing.T) {
	headers := []string{"Trade Date", "Symbol", "Qty", "Price", "Direction"}
	samples := []models.RawRow{
		{"Direction": "BUY"},
		{"Direction": "sell"},
	}

	mapping := DetectSchema(headers, samples, "")

	if got := mapping.Column(models.FieldSide); got != "Direction" {
		t.Errorf("side mapped to %q, want %q (sample-value sniff)", got, "Direction")
	}
}

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		blob    string
		want    string
	}{
		{"from blob", []string{"Symbol"}, "Exported from Zerodha Console\nSymbol,...", "zerodha"},
		{"from header", []string{"Kite Tradingsymbol"}, "", "zerodha"},
		{"upstox", []string{"Symbol"}, "upstox trade report", "upstox"},
		{"unknown", []string{"Symbol"}, "Symbol,Qty\nRELIANCE,10", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := DetectSchema(tt.headers, nil, tt.blob)
			if mapping.Dialect != tt.want {
				t.Errorf("dialect = %q, want %q", mapping.Dialect, tt.want)
			}
		})
	}
}
