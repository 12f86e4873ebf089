package insights

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders an amount as US dollars with grouping, e.g. "$10,000.00"
// or "-$1,000.00". Amounts that round to zero cents render without a sign.
func FormatMoney(amount float64) string {
	cents := math.Round(amount * 100)
	if cents == 0 {
		return "$0.00"
	}
	if cents < 0 {
		return "-" + usd.Sprintf("$%.2f", -cents/100)
	}
	return usd.Sprintf("$%.2f", cents/100)
}

// FormatPercent renders a percentage to one decimal place, e.g. "70.0%"
func FormatPercent(pct float64) string {
	if math.Abs(pct) < 0.05 {
		pct = 0
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// formatHours renders a labor hour total to one decimal place
func formatHours(hours float64) string {
	return usd.Sprintf("%.1f", hours)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
