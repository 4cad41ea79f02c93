package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// creditUnit is the slice of a project budget (in CHF) that costs one credit.
var creditUnit = decimal.NewFromInt(250)

// Budget is a project's CHF budget range. Min is optional.
type Budget struct {
	Min decimal.NullDecimal
	Max decimal.Decimal
}

// NewBudget builds a budget from whole-franc bounds; a nil min means "up to max".
func NewBudget(min *int64, max int64) *Budget {
	b := &Budget{Max: decimal.NewFromInt(max)}
	if min != nil {
		b.Min = decimal.NewNullDecimal(decimal.NewFromInt(*min))
	}
	return b
}

// PriceFor returns the unlock price in credits: one credit per started CHF 250
// of the budget maximum, with a floor of one credit. Projects without a budget
// cost one credit. Budgets above CHF 1000 keep scaling linearly.
func PriceFor(budget *Budget) int64 {
	if budget == nil {
		return 1
	}
	max := decimal.Max(budget.Max, creditUnit)
	return max.Div(creditUnit).Ceil().IntPart()
}

// Display renders the budget the way it is shown to businesses,
// e.g. "CHF 800 - 1'000" or "up to CHF 250".
func (b *Budget) Display() string {
	if b == nil {
		return "on request"
	}
	if !b.Min.Valid {
		return "up to CHF " + formatCHF(b.Max)
	}
	return fmt.Sprintf("CHF %s - %s", formatCHF(b.Min.Decimal), formatCHF(b.Max))
}

// formatCHF groups thousands with an apostrophe (Swiss style) and drops
// the fraction for whole amounts.
func formatCHF(amount decimal.Decimal) string {
	var raw string
	if amount.Equal(amount.Truncate(0)) {
		raw = amount.Truncate(0).String()
	} else {
		raw = amount.StringFixed(2)
	}

	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign, raw = "-", raw[1:]
	}
	whole, frac, hasFrac := strings.Cut(raw, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('\'')
		}
		grouped.WriteRune(r)
	}
	if hasFrac {
		return sign + grouped.String() + "." + frac
	}
	return sign + grouped.String()
}
