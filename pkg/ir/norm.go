package ir

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var amountPattern = regexp.MustCompile(`[\d,]+\.?\d*`)

var currencyMarkers = []struct {
	marker   string
	currency string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"USD", "USD"},
	{"EUR", "EUR"},
}

// LooksNumeric reports whether a raw value carries both a digit and a known
// currency marker. Anything weaker is left alone; normalization never guesses.
func LooksNumeric(value string) bool {
	if !strings.ContainsFunc(value, unicode.IsDigit) {
		return false
	}
	for _, m := range currencyMarkers {
		if strings.Contains(value, m.marker) {
			return true
		}
	}
	return false
}

// ParseAmount extracts the numeric amount and currency from a verbatim value.
// Thousands separators are dropped; the verbatim text itself is untouched.
func ParseAmount(value string) (amount float64, currency string, ok bool) {
	if !LooksNumeric(value) {
		return 0, "", false
	}
	for _, m := range currencyMarkers {
		if strings.Contains(value, m.marker) {
			currency = m.currency
			break
		}
	}
	match := amountPattern.FindString(value)
	if match == "" {
		return 0, "", false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, "", false
	}
	return f, currency, true
}

// NormalizeAmounts fills the derived norm for every amount indicator whose
// verbatim value parses as a currency amount. Numeric is only filled when
// absent so upstream-provided values win. Verbatim is never rewritten.
func NormalizeAmounts(doc *Document) {
	for i := range doc.Indicators {
		ind := &doc.Indicators[i]
		if ind.Kind != "amount" {
			continue
		}
		amount, currency, ok := ParseAmount(ind.Verbatim)
		if !ok {
			continue
		}
		if ind.Norm == nil {
			ind.Norm = &Norm{Currency: currency, Amount: amount}
		}
		if ind.Numeric == nil {
			n := ind.Norm.Amount
			ind.Numeric = &n
		}
	}
}
