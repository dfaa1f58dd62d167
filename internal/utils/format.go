package utils

import (
	"fmt"
	"math"
	"strings"
)

// CurrencySymbol is prefixed to every displayed amount.
const CurrencySymbol = "৳"

// FormatPrice formats amount with thousand separators and the taka sign.
// Fractions are shown only when the amount is not whole.
func FormatPrice(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	neg := amount < 0
	amount = math.Abs(amount)

	whole := math.Floor(amount)
	frac := math.Round((amount - whole) * 100)
	if frac >= 100 {
		whole++
		frac = 0
	}

	str := fmt.Sprintf("%d", int64(whole))
	var result strings.Builder
	if neg {
		result.WriteString("-")
	}
	result.WriteString(CurrencySymbol)
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	if frac > 0 {
		result.WriteString(fmt.Sprintf(".%02d", int64(frac)))
	}
	return result.String()
}
