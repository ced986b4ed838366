package models

// Trade sides and instrument classes as stored on the ledger.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	ClassEquity = "EQUITY"
	ClassFuture = "FUTURE"
	ClassOption = "OPTION"
)

// Ledger record statuses.
const (
	StatusRealized  = "REALIZED"
	StatusOpen      = "OPEN"
	StatusOpenShort = "OPEN_SHORT"
)

// RawRow maps a column name to the cell value for one input line.
// It only exists while an import is being parsed.
type RawRow map[string]string

// TradeLeg is a single BUY or SELL execution, fully normalized.
// Produced by the row parser (or a broker adapter) and consumed by the matcher.
type TradeLeg struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	Symbol          string  `json:"symbol"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
	Side            string  `json:"side"`
	InstrumentClass string  `json:"instrument_class"`
	LotSize         int     `json:"lot_size"`
	Segment         string  `json:"segment"`
}

// RejectedRow records why one input row was dropped during parsing.
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// MatchedTrade is one ledger record: either a realized BUY/SELL pair, an open
// long lot, or a naked short. GrossPnL/NetPnL are nil for open records.
type MatchedTrade struct {
	Symbol          string   `json:"symbol"`
	Status          string   `json:"status"`
	InstrumentClass string   `json:"instrument_class"`
	Quantity        float64  `json:"quantity"`
	EntryDate       string   `json:"entry_date,omitempty"`
	ExitDate        string   `json:"exit_date,omitempty"`
	EntryPrice      float64  `json:"entry_price,omitempty"`
	ExitPrice       float64  `json:"exit_price,omitempty"`
	GrossPnL        *float64 `json:"gross_pnl"`
	Charges         float64  `json:"charges"`
	NetPnL          *float64 `json:"net_pnl"`
}

// Summary is the portfolio aggregate over a ledger. It is derived data,
// recomputable at any time, never persisted as separate state.
type Summary struct {
	TotalPnL          float64 `json:"total_pnl"`
	TotalCharges      float64 `json:"total_charges"`
	NetPnL            float64 `json:"net_pnl"`
	RealizedCount     int     `json:"realized_count"`
	OpenPositionCount int     `json:"open_position_count"`
}
