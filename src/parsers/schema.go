package parsers

import (
	"strings"

	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

// maxSampleRows is how many data rows the detector inspects beyond headers.
const maxSampleRows = 5

// dialectSniffLen bounds how much of the raw text is searched for broker names.
const dialectSniffLen = 500

// fieldOrder fixes the iteration order for claiming headers. Required fields
// go first so an ambiguous header is claimed by the field that matters most.
var fieldOrder = []string{
	models.FieldDate,
	models.FieldSymbol,
	models.FieldQuantity,
	models.FieldPrice,
	models.FieldSide,
	models.FieldInstrumentType,
	models.FieldLotSize,
	models.FieldSegment,
}

// fieldSynonyms holds ordered synonym lists per semantic field, normalized
// form (lower-case, separators stripped). Most specific synonyms first. The
// side list deliberately has no bare "type" entry: under bidirectional
// containment it would swallow headers like "Instrument Type" before the
// instrument-type field gets a turn, while a header literally named "Type"
// still matches because "type" is contained in "txntype".
var fieldSynonyms = map[string][]string{
	models.FieldDate:           {"tradedate", "orderexecutiontime", "executiondate", "dealdate", "txndate", "date", "timestamp", "time"},
	models.FieldSymbol:         {"tradingsymbol", "scripname", "scripcode", "scrip", "symbol", "instrumentname", "contract", "stockname"},
	models.FieldQuantity:       {"filledqty", "quantity", "qty", "units", "shares", "volume"},
	models.FieldPrice:          {"avgprice", "averageprice", "tradeprice", "price", "rate"},
	models.FieldSide:           {"buysell", "transactiontype", "txntype", "tradetype", "side", "action", "ordertype"},
	models.FieldInstrumentType: {"instrumenttype", "optiontype", "producttype", "product", "series", "assetclass"},
	models.FieldLotSize:        {"lotsize", "contractsize", "multiplier", "lot"},
	models.FieldSegment:        {"exchangesegment", "segment", "exchange", "market"},
}

// dialectMarkers maps lower-cased broker names to the dialect label reported
// on the mapping. Searched across headers and the head of the raw text.
var dialectMarkers = []struct{ marker, dialect string }{
	{"zerodha", "zerodha"},
	{"kite", "zerodha"},
	{"upstox", "upstox"},
	{"angel", "angelone"},
	{"groww", "groww"},
	{"icici", "icicidirect"},
	{"5paisa", "5paisa"},
	{"fyers", "fyers"},
	{"dhan", "dhan"},
}

// sideTokens are sample values that identify an unlabeled side column.
var sideTokens = map[string]bool{
	"buy": true, "sell": true, "b": true, "s": true,
	"bought": true, "sold": true, "long": true, "short": true,
}

// DetectSchema infers which column carries which semantic field from the
// header list, up to maxSampleRows sample rows, and the raw text blob.
// Confidence scores only the required fields (date, symbol, quantity, price);
// anything below 100 is still returned as a best-effort partial mapping and
// the caller decides whether to require manual correction.
func DetectSchema(headers []string, samples []models.RawRow, blob string) models.ColumnMapping {
	mapping := models.ColumnMapping{
		Columns: make(map[string]string),
		Dialect: detectDialect(headers, blob),
	}

	claimed := make(map[string]bool)
	for _, field := range fieldOrder {
		if col, ok := matchField(field, headers, claimed); ok {
			mapping.Columns[field] = col
			claimed[col] = true
		}
	}

	// Header synonyms missed the side column: look for a column whose sample
	// values are recognizable buy/sell tokens.
	if _, ok := mapping.Columns[models.FieldSide]; !ok {
		if col, ok := sniffSideColumn(headers, samples, claimed); ok {
			mapping.Columns[models.FieldSide] = col
			claimed[col] = true
		}
	}

	matched := 0
	for _, field := range models.RequiredFields {
		if _, ok := mapping.Columns[field]; ok {
			matched++
		}
	}
	mapping.Confidence = float64(matched) / float64(len(models.RequiredFields)) * 100

	if mapping.Confidence < 100 {
		logger.L.Warn("Schema detection incomplete, returning partial mapping",
			"confidence", mapping.Confidence, "dialect", mapping.Dialect)
	}
	return mapping
}

// matchField scans each synonym in priority order against every unclaimed
// header, using bidirectional containment on normalized names.
func matchField(field string, headers []string, claimed map[string]bool) (string, bool) {
	for _, syn := range fieldSynonyms[field] {
		for _, header := range headers {
			if claimed[header] {
				continue
			}
			n := normalizeHeader(header)
			if n == "" {
				continue
			}
			if strings.Contains(n, syn) || strings.Contains(syn, n) {
				return header, true
			}
		}
	}
	return "", false
}

func sniffSideColumn(headers []string, samples []models.RawRow, claimed map[string]bool) (string, bool) {
	if len(samples) > maxSampleRows {
		samples = samples[:maxSampleRows]
	}
	for _, header := range headers {
		if claimed[header] {
			continue
		}
		hits := 0
		for _, row := range samples {
			if sideTokens[strings.ToLower(strings.TrimSpace(row[header]))] {
				hits++
			}
		}
		if hits > 0 && hits == len(samples) {
			return header, true
		}
	}
	return "", false
}

func detectDialect(headers []string, blob string) string {
	haystack := strings.ToLower(strings.Join(headers, " "))
	if len(blob) > dialectSniffLen {
		blob = blob[:dialectSniffLen]
	}
	haystack += " " + strings.ToLower(blob)

	for _, m := range dialectMarkers {
		if strings.Contains(haystack, m.marker) {
			return m.dialect
		}
	}
	return "generic"
}

// normalizeHeader lower-cases a header and strips separator characters so
// "Trade Date", "trade_date" and "TradeDate" all compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-', '.', '/', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
