package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

// ErrEmptyInput is returned when an export file has no header or data rows.
// An empty file rejects the whole import; everything row-level is non-fatal.
var ErrEmptyInput = errors.New("input file is empty")

// CSVParser parses column-oriented trade exports with unknown schemas. The
// whole file is materialized before any work happens; the pipeline itself
// does no I/O.
type CSVParser struct {
	maxRows int
}

// NewCSVParser returns a parser that refuses inputs longer than maxRows data
// rows. maxRows <= 0 means unbounded.
func NewCSVParser(maxRows int) *CSVParser {
	return &CSVParser{maxRows: maxRows}
}

func (p *CSVParser) Parse(file io.Reader) (*ImportOutcome, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return p.ParseText(string(raw))
}

// ParseText runs schema detection and row normalization over a decoded blob.
func (p *CSVParser) ParseText(blob string) (*ImportOutcome, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, ErrEmptyInput
	}

	reader := csv.NewReader(strings.NewReader(blob))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	if p.maxRows > 0 && len(records) > p.maxRows {
		return nil, fmt.Errorf("input has %d rows, limit is %d", len(records), p.maxRows)
	}

	rows := make([]models.RawRow, 0, len(records))
	for _, record := range records {
		row := make(models.RawRow, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	samples := rows
	if len(samples) > maxSampleRows {
		samples = samples[:maxSampleRows]
	}
	mapping := DetectSchema(headers, samples, blob)

	legs, rejected := NormalizeRows(rows, mapping)
	logger.L.Info("Parsed trade export",
		"dialect", mapping.Dialect,
		"confidence", mapping.Confidence,
		"rows", len(rows),
		"legs", len(legs),
		"rejected", len(rejected))

	return &ImportOutcome{Legs: legs, Mapping: mapping, Rejected: rejected}, nil
}
