package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats lists the layouts accepted for record dates, most specific first
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
}

func parseRequiredString(s string, rowNum int, columnName string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{
			Row:    rowNum,
			Column: columnName,
			Value:  s,
			Err:    fmt.Errorf("required field is empty"),
		}
	}
	return s, nil
}

// Bounds for monetary and hour cells. Values outside them are unreadable.
const (
	maxDecimalLength = 64
	maxIntegerDigits = 15
	maxScale         = 18
)

// parseNullableDecimal parses optional decimal fields
func parseNullableDecimal(s string) *decimal.Decimal {
	s = cleanCurrency(s)
	if s == "" || len(s) > maxDecimalLength {
		return nil
	}

	val, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if !inRange(val) {
		return nil
	}
	if val.Exponent() < -maxScale {
		val = val.Round(maxScale)
	}

	return &val
}

// inRange bounds magnitude and precision from the exponent and digit count
// alone, so "1e30000000" is rejected without ever being expanded.
func inRange(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -(maxDecimalLength + maxScale) {
		return false
	}
	coef := d.Coefficient()
	return len(coef.Abs(coef).String())+exp <= maxIntegerDigits
}

// parseLenientDecimal parses a decimal, treating anything unreadable as zero
func parseLenientDecimal(s string) decimal.Decimal {
	return decimalOrZero(parseNullableDecimal(s))
}

// cleanCurrency removes $ and commas from currency strings
// Also handles accounting notation: (123.45) → -123.45
func cleanCurrency(s string) string {
	s = strings.TrimSpace(s)

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimPrefix(s, "(")
		s = strings.TrimSuffix(s, ")")
		s = strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative && s != "" && s != "0" && s != "0.00" {
		s = "-" + s
	}

	return s
}

// parseNullableString returns nil for empty strings
func parseNullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseNullableDate handles multiple date formats
func parseNullableDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}

	return nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
