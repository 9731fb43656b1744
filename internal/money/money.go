// Package money formats minor-unit amounts for people.
package money

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format renders amount (in minor units of code) for locale, for example
// Format(123450, "INR", "en") == "₹1,234.50". Unknown currency codes fall
// back to the bare number with the code appended.
func Format(amount int64, code, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)

	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return p.Sprintf("%d %s", amount, strings.ToUpper(code))
	}
	scale, _ := currency.Standard.Rounding(unit)
	major := float64(amount) / math.Pow10(scale)
	symbol := p.Sprint(currency.NarrowSymbol(unit))
	return symbol + p.Sprintf(fmt.Sprintf("%%.%df", scale), major)
}

// Scale returns the number of minor-unit digits for the currency.
func Scale(code string) int {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}
