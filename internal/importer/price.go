package importer

import (
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var firstNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// priceRecord is one entry of the JSON price history some exports carry.
type priceRecord struct {
	AmountMin *float64 `json:"amountMin"`
	AmountMax *float64 `json:"amountMax"`
	Currency  string   `json:"currency"`
	DateAdded string   `json:"dateAdded"`
}

func (p priceRecord) amounts() (float64, float64) {
	var price float64
	if p.AmountMin != nil {
		price = *p.AmountMin
	}
	original := price
	if p.AmountMax != nil {
		original = *p.AmountMax
	}
	return price, original
}

// CleanPrice extracts the current and original price from a raw price cell.
//
// A JSON array of price records prefers the most recently added USD record
// and falls back to the first record. Its amountMin is the price and
// amountMax the original price. Anything else yields the first number in the
// string for both. Unparseable input yields zeros.
func CleanPrice(raw string) (price, original float64) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0
	}

	if strings.HasPrefix(raw, "[{") {
		var records []priceRecord
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return 0, 0
		}

		usd := make([]priceRecord, 0, len(records))
		for _, r := range records {
			if r.Currency == "USD" {
				usd = append(usd, r)
			}
		}
		if len(usd) > 0 {
			slices.SortStableFunc(usd, func(a, b priceRecord) int {
				return strings.Compare(b.DateAdded, a.DateAdded)
			})
			return usd[0].amounts()
		}
		if len(records) > 0 {
			return records[0].amounts()
		}
	}

	if m := firstNumber.FindString(raw); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v, v
		}
	}
	return 0, 0
}
