// Package money holds the decimal amount type used by every report figure.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. Sums never go through float64.
type Money = decimal.Decimal

// Zero returns a zero amount.
func Zero() Money {
	return decimal.Zero
}

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money {
	return decimal.New(cents, -2)
}

// MustParse parses a decimal string and panics on error. Use only for constants and tests.
func MustParse(raw string) Money {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		panic(err)
	}
	return amount
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}

/*
Format renders an amount rounded to 2 decimals with dot thousand separators and
a comma decimal separator, prefixed by the currency code.

Example:

	71630.5 -> "COP 71.630,50"
	-1200   -> "-COP 1.200,00"
	-0.004  -> "COP 0,00"
*/
func Format(amount Money, currency string) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	integerPart, fractionPart, _ := strings.Cut(fixed, ".")
	grouped := groupThousands(integerPart, ".")

	if currency == "" {
		return fmt.Sprintf("%s%s,%s", sign, grouped, fractionPart)
	}
	return fmt.Sprintf("%s%s %s,%s", sign, currency, grouped, fractionPart)
}

// FormatPercent renders a percentage with one decimal, e.g. "12.5%".
func FormatPercent(percent decimal.Decimal) string {
	return percent.StringFixed(1) + "%"
}

// FormatCount formats a count with comma separators for readability.
func FormatCount(value int) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	return sign + groupThousands(fmt.Sprintf("%d", value), ",")
}

/*
groupThousands groups digits in a base-10 string using the provided separator.
*/
func groupThousands(raw string, sep string) string {
	if len(raw) <= 3 {
		return raw
	}

	var builder strings.Builder
	firstGroupLen := len(raw) % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}

	builder.WriteString(raw[:firstGroupLen])

	for index := firstGroupLen; index < len(raw); index += 3 {
		builder.WriteString(sep)
		builder.WriteString(raw[index : index+3])
	}

	return builder.String()
}
