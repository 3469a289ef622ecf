package core

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ParseAmount reads a currency or count typed by an operator. Both the
// Brazilian form (1.234,56) and the plain form (1234.56) are accepted.
// Anything that does not parse becomes 0.
func ParseAmount(value string) float64 {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "R$")
	value = strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if value == "" {
		return 0
	}
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// Amount is a number decoded leniently from JSON: numbers, numeric strings
// and null are all accepted, anything else decodes to 0.
type Amount float64

func (a Amount) Float() float64 {
	return float64(a)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(ParseAmount(raw))
		return nil
	}
	*a = Amount(ParseAmount(string(data)))
	return nil
}
