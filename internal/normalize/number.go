// Package normalize converts locale-dependent statement text into numbers,
// dates and header keys. Every function is total: bad input yields ok=false
// or an empty result, never an error.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Auto lets ParseNumber infer the separator from the text.
const Auto = "auto"

var numberJunk = regexp.MustCompile(`[^0-9,.\-()']+`)

// ParseNumber parses a locale-formatted amount such as "1'234.56",
// "1.234,56", "(12.50)" or "12.50-".
//
// With decimalSep == Auto and both ',' and '.' present, the later one is the
// decimal mark; a lone ',' is a decimal mark. An explicit decimal separator
// erases the other symbol. An explicit thousandsSep is removed up front.
func ParseNumber(text, decimalSep, thousandsSep string) (decimal.Decimal, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return decimal.Zero, false
	}

	// Spreadsheet exports wrap numbers as ="123.45" to keep them textual.
	if strings.HasPrefix(t, `="`) && strings.HasSuffix(t, `"`) && len(t) >= 3 {
		t = strings.TrimSpace(t[2 : len(t)-1])
	}

	neg := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		neg = true
		t = strings.TrimSpace(t[1 : len(t)-1])
	}

	t = numberJunk.ReplaceAllString(t, "")
	t = strings.ReplaceAll(t, "'", "")

	// Debits printed as "12.50-".
	if strings.HasSuffix(t, "-") && !strings.HasPrefix(t, "-") {
		neg = !neg
		t = strings.TrimSuffix(t, "-")
	}

	if thousandsSep != "" && thousandsSep != Auto && thousandsSep != decimalSep {
		t = strings.ReplaceAll(t, thousandsSep, "")
	}

	switch decimalSep {
	case ",":
		t = strings.ReplaceAll(t, ".", "")
		t = strings.ReplaceAll(t, ",", ".")
	case ".":
		t = strings.ReplaceAll(t, ",", "")
	default:
		comma := strings.LastIndex(t, ",")
		dot := strings.LastIndex(t, ".")
		switch {
		case comma >= 0 && dot >= 0 && comma > dot:
			t = strings.ReplaceAll(t, ".", "")
			t = strings.ReplaceAll(t, ",", ".")
		case comma >= 0 && dot >= 0:
			t = strings.ReplaceAll(t, ",", "")
		case comma >= 0:
			t = strings.ReplaceAll(t, ",", ".")
		}
	}

	if t == "" || strings.ContainsAny(t, "()") {
		return decimal.Zero, false
	}

	v, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		v = v.Neg()
	}
	return v, true
}

// ParseNullNumber is ParseNumber returning a NullDecimal.
func ParseNullNumber(text, decimalSep, thousandsSep string) decimal.NullDecimal {
	v, ok := ParseNumber(text, decimalSep, thousandsSep)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}
