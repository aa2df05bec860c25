// Package money formatea montos en bolívares con separadores en español
// ("Bs 1.234,50": punto de miles y coma decimal).
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Prefix símbolo de la moneda.
const Prefix = "Bs "

var printer = message.NewPrinter(language.Spanish)

// FormatBs formatea d con dos decimales fijos.
func FormatBs(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	return Prefix + printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
