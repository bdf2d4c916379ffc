package currency

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var ErrNoAmount = errors.New("no amount in price text")

// markers is checked in order, so prefixed dollar signs come before the
// bare one.
var markers = []struct {
	symbol string
	code   string
	prefix bool
}{
	{"HK$", "HKD", false},
	{"C$", "CAD", false},
	{"A$", "AUD", false},
	{"S$", "SGD", false},
	{"₹", "INR", false},
	{"€", "EUR", false},
	{"£", "GBP", false},
	{"$", "USD", false},
	{"Rp", "IDR", true},
}

var (
	reAmount = regexp.MustCompile(`\d[\d.,]*`)
	reCode   = regexp.MustCompile(`\b[A-Z]{3}\b`)
)

// Parse extracts the numeric amount and currency code from scraped price
// text such as "₹ 5,432", "$120", "INR 4,999" or "100". The code is empty
// when the text carries neither a known symbol nor a 3-letter code.
func Parse(raw string) (float64, string, error) {
	text := strings.TrimSpace(raw)
	code := detectCode(text)

	match := reAmount.FindString(text)
	if match == "" {
		return 0, code, ErrNoAmount
	}

	amount, err := strconv.ParseFloat(normalizeNumber(match, code), 64)
	if err != nil {
		return 0, code, err
	}
	return amount, code, nil
}

func detectCode(text string) string {
	if code := reCode.FindString(text); code != "" {
		return code
	}
	for _, m := range markers {
		if m.prefix {
			if strings.HasPrefix(text, m.symbol) {
				return m.code
			}
			continue
		}
		if strings.Contains(text, m.symbol) {
			return m.code
		}
	}
	return ""
}

// normalizeNumber turns a grouped number into a form strconv accepts. The
// rightmost separator is the decimal mark when both kinds appear; a lone
// kind is a thousands separator if it repeats or is followed by exactly
// three digits.
func normalizeNumber(s, code string) string {
	s = strings.TrimRight(s, ".,")
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || (code == "IDR" && len(s)-lastDot-1 == 3) {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}
	return s
}
