package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder values the ledger uses for not-yet-known amounts. They are not
// prices and contribute nothing to monthly totals.
var pricePlaceholders = map[string]struct{}{
	"":               {},
	"$XXX":           {},
	"???":            {},
	"DUE???":         {},
	"MONTHLY CALC??": {},
}

// ParsePrice converts a ledger price cell such as "$150" or "87.50" into a
// decimal amount. The second return is false for placeholders and anything
// else non-numeric; callers decide whether that is a skip or an error.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if _, ok := pricePlaceholders[strings.ToUpper(s)]; ok {
		return decimal.Zero, false
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatPrice renders an amount the way the ledger stores prices.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.String()
}
