package parsers

import (
	"fmt"

	"github.com/FExEVIL/tradeautopsy-sub003/src/config"
)

// GetParser resolves a source label to a parser. Column-oriented text exports
// all go through the schema-detecting CSV parser; pre-structured broker API
// records bypass this entirely via their adapter package.
func GetParser(source string) (Parser, error) {
	maxRows := 0
	if config.Cfg != nil {
		maxRows = config.Cfg.MaxImportRows
	}

	switch source {
	case "", "csv", "generic":
		return NewCSVParser(maxRows), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
