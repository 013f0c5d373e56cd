// Package money formats amounts for display in the user's currency and language.
package money

import (
	"github.com/budgetbolt/backend/internal/model"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Format renders amount with the symbol of c, grouped and rounded the way
// lang writes money. Amounts are never converted between currencies.
func Format(amount float64, c model.Currency, lang model.Language) string {
	p := message.NewPrinter(tag(lang))

	unit, err := currency.ParseISO(c.ISOCode())
	if err != nil {
		return p.Sprintf("%s %.2f", c, amount)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return p.Sprintf("%v %v", currency.Symbol(unit), number.Decimal(amount, number.Scale(scale)))
}

// Formatter binds a currency and language.
type Formatter struct {
	Currency model.Currency
	Language model.Language
}

// For returns a formatter for s.
func For(s model.UserSettings) Formatter {
	return Formatter{Currency: s.Currency, Language: s.Language}
}

func (f Formatter) Format(amount float64) string {
	return Format(amount, f.Currency, f.Language)
}

// Percent renders a progress ratio such as 0.3 as "30%".
func (f Formatter) Percent(ratio float64) string {
	return message.NewPrinter(tag(f.Language)).Sprintf("%.0f%%", ratio*100)
}

func tag(lang model.Language) language.Tag {
	t, err := language.Parse(string(lang))
	if err != nil {
		return language.AmericanEnglish
	}
	return t
}
