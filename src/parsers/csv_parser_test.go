package parsers

import (
	"errors"
	"strings"
	"testing"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

const sampleExport = `Trade Date,Tradingsymbol,Qty,Price,Txn Type,Instrument Type,Lot Size,Segment
15-03-2024,RELIANCE,10,2450.50,BUY,EQ,,NSE
18-03-2024,RELIANCE,10,2500.00,SELL,EQ,,NSE
bad date,RELIANCE,10,2500.00,SELL,EQ,,NSE
`

func TestCSVParserParse(t *testing.T) {
	parser := NewCSVParser(0)

	outcome, err := parser.Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if outcome.Mapping.Confidence != 100 {
		t.Errorf("confidence = %v, want 100", outcome.Mapping.Confidence)
	}
	if len(outcome.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(outcome.Legs))
	}
	if len(outcome.Rejected) != 1 || outcome.Rejected[0].Line != 3 {
		t.Errorf("rejected = %v, want line 3 only", outcome.Rejected)
	}
	if outcome.Legs[0].Side != models.SideBuy || outcome.Legs[1].Side != models.SideSell {
		t.Errorf("sides = %s, %s", outcome.Legs[0].Side, outcome.Legs[1].Side)
	}
}

func TestCSVParserEmptyInput(t *testing.T) {
	parser := NewCSVParser(0)

	for _, blob := range []string{"", "   \n  ", "Trade Date,Symbol,Qty,Price\n"} {
		if _, err := parser.ParseText(blob); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("ParseText(%q) error = %v, want ErrEmptyInput", blob, err)
		}
	}
}

func TestCSVParserRowLimit(t *testing.T) {
	parser := NewCSVParser(1)

	_, err := parser.ParseText(sampleExport)
	if err == nil || errors.Is(err, ErrEmptyInput) {
		t.Fatalf("ParseText() error = %v, want row-limit error", err)
	}
}

func TestCSVParserRaggedRows(t *testing.T) {
	blob := "Trade Date,Tradingsymbol,Qty,Price,Txn Type\n" +
		"15-03-2024,INFY,5,1500,BUY\n" +
		"18-03-2024,INFY,5\n" // short row: price missing, row dropped

	parser := NewCSVParser(0)
	outcome, err := parser.ParseText(blob)
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if len(outcome.Legs) != 1 {
		t.Errorf("legs = %d, want 1", len(outcome.Legs))
	}
	if len(outcome.Rejected) != 1 {
		t.Errorf("rejected = %v, want one entry", outcome.Rejected)
	}
}
