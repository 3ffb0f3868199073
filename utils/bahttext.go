package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thaiDigits    = [10]string{"ศูนย์", "หนึ่ง", "สอง", "สาม", "สี่", "ห้า", "หก", "เจ็ด", "แปด", "เก้า"}
	thaiPositions = [6]string{"", "สิบ", "ร้อย", "พัน", "หมื่น", "แสน"}
)

// readChunk spells a group of at most six digits.
func readChunk(digits string) string {
	var b strings.Builder
	n := len(digits)
	for i := 0; i < n; i++ {
		d := int(digits[i] - '0')
		pos := n - i - 1
		if d == 0 {
			continue
		}
		switch pos {
		case 1:
			switch d {
			case 1:
				b.WriteString("สิบ")
			case 2:
				b.WriteString("ยี่สิบ")
			default:
				b.WriteString(thaiDigits[d] + "สิบ")
			}
		case 0:
			tens := 0
			if n >= 2 {
				tens = int(digits[n-2] - '0')
			}
			if d == 1 && n > 1 && tens != 0 {
				b.WriteString("เอ็ด")
			} else {
				b.WriteString(thaiDigits[d])
			}
		default:
			b.WriteString(thaiDigits[d] + thaiPositions[pos])
		}
	}
	return b.String()
}

func readInt(n int64) string {
	if n == 0 {
		return thaiDigits[0]
	}
	var parts []string
	for i := 0; n > 0; i++ {
		chunk := n % 1_000_000
		if chunk != 0 {
			w := readChunk(fmt.Sprint(chunk)) + strings.Repeat("ล้าน", i)
			parts = append([]string{w}, parts...)
		}
		n /= 1_000_000
	}
	return strings.Join(parts, "")
}

// BahtText spells an amount the way Thai tax documents print it, e.g.
// 21.5 -> "ยี่สิบเอ็ดบาทห้าสิบสตางค์", 100 -> "หนึ่งร้อยบาทถ้วน".
func BahtText(amount float64) string {
	amt := decimal.NewFromFloat(amount).Round(2)
	neg := amt.IsNegative()
	if neg {
		amt = amt.Neg()
	}
	baht := amt.IntPart()
	satang := amt.Sub(decimal.NewFromInt(baht)).Mul(decimal.NewFromInt(100)).IntPart()

	words := readInt(baht) + "บาท"
	if satang == 0 {
		words += "ถ้วน"
	} else {
		words += readChunk(fmt.Sprintf("%02d", satang)) + "สตางค์"
	}
	if neg {
		return "ลบ" + words
	}
	return words
}
