package postgres

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

// psql arma SQL con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NUMERIC se escanea como texto y se parsea a decimal.
func parseMoney(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
