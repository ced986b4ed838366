package parsers

import (
	"io"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
)

// ImportOutcome is everything a parser extracts from one export file.
type ImportOutcome struct {
	Legs     []models.TradeLeg    `json:"legs"`
	Mapping  models.ColumnMapping `json:"mapping"`
	Rejected []models.RejectedRow `json:"rejected"`
}

// Parser turns one broker-export file into normalized trade legs.
type Parser interface {
	Parse(file io.Reader) (*ImportOutcome, error)
}
