// Package pricing normalizes scraped price strings into decimal amounts.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize parses a scraped price string into a decimal amount. Inputs are
// Chilean-formatted ("$1.990", "CLP 1.990,50") where '.' groups thousands and
// ',' marks decimals. Unparseable input yields zero.
func Normalize(raw string) decimal.Decimal {
	s := strings.ReplaceAll(raw, "CLP", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		// "1.990,50": dots group thousands, the comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		// "1,090": commas group thousands.
		s = strings.ReplaceAll(s, ",", "")
	case hasDot:
		// "1.990" is thousands-grouped, "19.90" is a plain decimal.
		parts := strings.Split(s, ".")
		if len(parts) == 2 && len(parts[1]) == 3 {
			s = parts[0] + parts[1]
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
