package models

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Checkout payloads arrive from browser-held cart state, where prices and
// quantities may be numbers, numeric strings, or display strings with
// currency text embedded ("120 MAD"). These types absorb all of that on
// unmarshal; anything unparseable becomes zero.

// Quantity decodes from a JSON number or a numeric string.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*q = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*q = Quantity(leadingInt(str))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(int(f))
	return nil
}

// Price decodes from a JSON number or a string that may embed text.
type Price float64

var priceRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)

func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*p = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*p = Price(ExtractPrice(str))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*p = 0
		return nil
	}
	*p = Price(f)
	return nil
}

// FlexString decodes from a JSON string or number, so clients may send a
// price either way and it is stored as a display string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*f = FlexString(num.String())
	return nil
}

// ExtractPrice pulls the first numeric amount out of a display string.
// "120 MAD" -> 120, "99,99" -> 99.99, garbage -> 0.
func ExtractPrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return f
	}
	m := priceRe.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
