package model

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var errNegativeAmount = errors.New("amount must be non-negative")

// ParseAmount reads a decimal-formatted string from the API boundary.
// Amounts never cross the boundary as binary floats.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal string %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errNegativeAmount
	}
	return d, nil
}

func ToPGNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func FromPGNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, errors.New("numeric from DB is not a finite number")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
