package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount of euros in minor units. All arithmetic on prices is
// done in cents; formatted strings exist only at presentation boundaries.
type Cents int64

var hundred = decimal.NewFromInt(100)

// Parse reads a price string as it appears in the legacy data: an optional
// euro suffix, comma or dot decimal separator, optional surrounding spaces
// ("12,50 €", "12.50€", "0.5"). The sign is preserved; callers decide
// whether negatives are acceptable.
func Parse(raw string) (Cents, error) {
	cleaned := strings.ReplaceAll(raw, "€", "")
	cleaned = strings.ReplaceAll(cleaned, " ", " ")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, fmt.Errorf("empty price %q", raw)
	}

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("unparsable price %q: %w", raw, err)
	}

	cents := dec.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("price %q has sub-cent precision", raw)
	}
	return Cents(cents.IntPart()), nil
}

// Format renders the amount the way the catalog displays it, e.g. "12.50 €".
func (c Cents) Format() string {
	return decimal.NewFromInt(int64(c)).Div(hundred).StringFixed(2) + " €"
}

// Times returns the line value for a quantity of items at this unit price.
func (c Cents) Times(quantity int) Cents {
	return c * Cents(quantity)
}
