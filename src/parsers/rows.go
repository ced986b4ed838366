package parsers

import (
	"strconv"
	"strings"

	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/security/validation"
	"github.com/FExEVIL/tradeautopsy-sub003/src/utils"
)

// Reject reasons recorded for dropped rows.
const (
	reasonBadDate     = "unparseable date"
	reasonNoSymbol    = "missing symbol"
	reasonBadQuantity = "non-positive quantity"
	reasonBadPrice    = "non-positive price"
)

// NormalizeRows applies a column mapping to raw rows and emits typed trade
// legs. Invalid rows are never an error: they are dropped and reported on the
// reject list with a per-row reason. Line numbers are 1-based over the data
// rows (the header line is not counted).
func NormalizeRows(rows []models.RawRow, mapping models.ColumnMapping) ([]models.TradeLeg, []models.RejectedRow) {
	var legs []models.TradeLeg
	var rejected []models.RejectedRow

	for i, row := range rows {
		line := i + 1
		leg, reason := normalizeRow(row, mapping)
		if reason != "" {
			logger.L.Debug("Dropping row", "line", line, "reason", reason)
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: reason})
			continue
		}
		legs = append(legs, leg)
	}
	return legs, rejected
}

func normalizeRow(row models.RawRow, mapping models.ColumnMapping) (models.TradeLeg, string) {
	cell := func(field string) string {
		col := mapping.Column(field)
		if col == "" {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	date, ok := utils.NormalizeDate(cell(models.FieldDate))
	if !ok {
		return models.TradeLeg{}, reasonBadDate
	}

	symbol := validation.SanitizeCell(cell(models.FieldSymbol))
	if symbol == "" {
		return models.TradeLeg{}, reasonNoSymbol
	}

	quantity := parseNumeric(cell(models.FieldQuantity))
	if quantity <= 0 {
		return models.TradeLeg{}, reasonBadQuantity
	}

	price := parseNumeric(cell(models.FieldPrice))
	if price <= 0 {
		return models.TradeLeg{}, reasonBadPrice
	}

	segment := validation.SanitizeCell(cell(models.FieldSegment))
	instrumentText := cell(models.FieldInstrumentType)

	lotSize := int(parseNumeric(cell(models.FieldLotSize)))
	if lotSize < 1 {
		lotSize = 1
	}

	return models.TradeLeg{
		Date:            date,
		Symbol:          strings.ToUpper(symbol),
		Quantity:        quantity,
		Price:           price,
		Side:            NormalizeSide(cell(models.FieldSide)),
		InstrumentClass: ClassifyInstrument(instrumentText, segment),
		LotSize:         lotSize,
		Segment:         segment,
	}, ""
}

// NormalizeSide folds broker side tokens onto BUY/SELL. Unrecognized tokens
// coerce to BUY without hitting the reject list.
func NormalizeSide(token string) string {
	t := strings.ToUpper(strings.TrimSpace(token))
	switch {
	case t == "S", t == "SELL", t == "SOLD", t == "SALE", t == "SHORT":
		return models.SideSell
	case strings.Contains(t, "SELL") || strings.Contains(t, "SOLD") || strings.Contains(t, "SALE") || strings.Contains(t, "SHORT"):
		return models.SideSell
	default:
		return models.SideBuy
	}
}

// ClassifyInstrument derives the instrument class from the combined
// instrument-type and segment text. Rules run in order of specificity and
// anything unrecognized is treated as equity.
func ClassifyInstrument(instrumentType, segment string) string {
	combined := strings.ToUpper(instrumentType + " " + segment)

	if strings.Contains(combined, "FUT") {
		return models.ClassFuture
	}
	if strings.Contains(combined, "OPT") || strings.Contains(combined, "CALL") || strings.Contains(combined, "PUT") ||
		hasToken(combined, "CE") || hasToken(combined, "PE") {
		return models.ClassOption
	}
	if strings.Contains(combined, "EQ") || strings.Contains(combined, "CASH") || strings.Contains(combined, "DELIVERY") {
		return models.ClassEquity
	}
	return models.ClassEquity
}

func hasToken(s, token string) bool {
	for _, f := range strings.Fields(s) {
		if f == token {
			return true
		}
	}
	return false
}

// parseNumeric strips everything that is not a digit, decimal point or sign,
// then parses the remainder. It never fails; garbage parses to 0 and the row
// validation filters the result.
func parseNumeric(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
