package dashboard

import (
	"math"
	"time"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// displayLocale is the single locale every value is rendered in.
var displayLocale = language.BrazilianPortuguese

func printer() *message.Printer { return message.NewPrinter(displayLocale) }

// FormatInt renders an integer with pt-BR grouping, e.g. 12.345.
func FormatInt(n int) string {
	return printer().Sprintf("%v", number.Decimal(n))
}

// FormatNumber renders v with at most two fraction digits, e.g. 1.234,5.
func FormatNumber(v float64) string {
	return printer().Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// fixed2 renders v with exactly two fraction digits.
func fixed2(v float64) string {
	return printer().Sprintf("%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// currencyPrefix is the BRL symbol followed by a no-break space.
const currencyPrefix = "R$\u00a0"

// FormatCurrency renders v as Brazilian reais, e.g. R$ 1.234,50.
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-" + currencyPrefix + fixed2(math.Abs(v))
	}
	return currencyPrefix + fixed2(v)
}

// FormatCompact abbreviates thousands for chart axes: 65560 renders as 65,56 mil.
func FormatCompact(v float64) string {
	if math.Abs(v) >= 1000 {
		return fixed2(v/1000) + " mil"
	}
	return FormatNumber(v)
}

// FormatDate renders a calendar date as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatCell renders a normalized cell for the data grid. Absent values render as "-".
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return placeholderValue
	case time.Time:
		return FormatDate(x)
	case float64:
		return FormatNumber(x)
	default:
		return dataset.Render(x)
	}
}
