package models

// Semantic field names used by the schema detector and row parser.
const (
	FieldDate           = "date"
	FieldSymbol         = "symbol"
	FieldQuantity       = "quantity"
	FieldPrice          = "price"
	FieldSide           = "side"
	FieldInstrumentType = "instrument_type"
	FieldLotSize        = "lot_size"
	FieldSegment        = "segment"
)

// ColumnMapping is the detected column→field assignment for one import job.
// Columns is keyed by semantic field name; a missing key means the field was
// not found in the headers. Immutable once computed.
type ColumnMapping struct {
	Columns    map[string]string `json:"columns"`
	Confidence float64           `json:"confidence"` // 0..100, over required fields
	Dialect    string            `json:"dialect"`
}

// Column returns the source column mapped to a semantic field, or "".
func (m ColumnMapping) Column(field string) string {
	return m.Columns[field]
}

// RequiredFields are the fields confidence is scored against.
var RequiredFields = []string{FieldDate, FieldSymbol, FieldQuantity, FieldPrice}
