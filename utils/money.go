package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VATRate is the fixed Thai VAT rate applied to every document.
const VATRate = 0.07

var vatRate = decimal.NewFromFloat(VATRate)

// Round2 rounds x to 2 decimal places (half away from zero, like ROUND_HALF_UP on the printed value).
func Round2(x float64) float64 {
	v, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return v
}

// LineAmount is quantity × unit price, rounded to satang.
func LineAmount(qty, price float64) float64 {
	v, _ := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)).Round(2).Float64()
	return v
}

// Sum adds amounts without accumulating binary float error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	v, _ := total.Float64()
	return v
}

// VAT returns the VAT on beforeVat and the grand total, both rounded at the point of display:
// grand == round(beforeVat + beforeVat*0.07, 2).
func VAT(beforeVat float64) (vat, grand float64) {
	b := decimal.NewFromFloat(beforeVat)
	v := b.Mul(vatRate)
	vat, _ = v.Round(2).Float64()
	grand, _ = b.Add(v).Round(2).Float64()
	return vat, grand
}

// FormatMoney renders x with thousands separators and two decimals: 1234.5 -> "1,234.50".
func FormatMoney(x float64) string {
	s := decimal.NewFromFloat(x).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
