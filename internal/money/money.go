// Package money holds the decimal helpers shared by pricing code.
package money

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
)

// Round2 rounds half away from zero to two decimals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Clamp bounds d to [0, limit].
func Clamp(d, limit decimal.Decimal) decimal.Decimal {
	return Max(Zero, Min(d, limit))
}

// Centavos converts an amount to the smallest currency unit.
func Centavos(d decimal.Decimal) int64 {
	return d.Mul(Hundred).Round(0).IntPart()
}

// Format renders an amount with the peso sign, e.g. ₱1,250.50.
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	out := make([]byte, 0, len(whole)+len(whole)/3)
	for i := range len(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	if neg {
		return "-₱" + string(out) + frac
	}
	return "₱" + string(out) + frac
}
