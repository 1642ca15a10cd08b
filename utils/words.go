package utils

import (
	"math"
	"strings"
)

var (
	ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells a rupee amount using the Indian grouping
// (thousand, lakh, crore), e.g. 125000.50 is
// "One Lakh Twenty Five Thousand Rupees And Fifty Paise Only".
func AmountInWords(amount float64) string {
	if amount < 0 {
		return "Minus " + AmountInWords(-amount)
	}
	paise := int64(math.Round(amount * 100))
	rupees, rest := paise/100, paise%100

	var b strings.Builder
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(indianWords(rupees))
	}
	b.WriteString(" Rupees")
	if rest > 0 {
		b.WriteString(" And ")
		b.WriteString(belowHundred(rest))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

func indianWords(n int64) string {
	var parts []string
	if n >= 10000000 {
		parts = append(parts, indianWords(n/10000000), "Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, belowHundred(n/100000), "Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, belowHundred(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
