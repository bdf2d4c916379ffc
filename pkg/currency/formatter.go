package currency

import (
	"fmt"
	"math"
	"strings"
)

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"IDR": "Rp",
}

// Format renders amount with thousands separators, prefixed by the
// currency's symbol when known and its code otherwise.
func Format(amount float64, code string) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	sep := ","
	if code == "IDR" {
		sep = "."
	}
	formatted := addThousandsSeparator(intStr, sep)

	prefix := code
	if sym, ok := symbols[code]; ok {
		prefix = sym
	}

	result := formatted
	if prefix != "" {
		result = strings.TrimSpace(prefix + " " + formatted)
	}
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
