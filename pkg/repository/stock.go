package repository

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Legacy product documents keep their stock count in whichever of these
// fields was first set, as either a number or a numeric string. This shim
// normalizes reads to an int and writes back using the same field name and
// representation, so touching a record never changes its schema. The rest of
// the codebase only ever sees the normalized count.

// stockFields in lookup priority order.
var stockFields = []string{"qty", "quantity", "stock"}

type stockValue struct {
	Field    string
	AsString bool
	Count    int
	// Raw is the exact stored value, used as the compare half of
	// compare-and-swap updates. Nil when the document has no stock field.
	Raw interface{}
}

func readStock(doc bson.M) stockValue {
	for _, field := range stockFields {
		raw, ok := doc[field]
		if !ok || raw == nil {
			continue
		}
		sv := stockValue{Field: field, Raw: raw}
		switch v := raw.(type) {
		case string:
			sv.AsString = true
			sv.Count = parseCount(v)
		case int:
			sv.Count = v
		case int32:
			sv.Count = int(v)
		case int64:
			sv.Count = int(v)
		case float64:
			sv.Count = int(v)
		}
		return sv
	}
	// No stock field at all: treat as empty. Writes default to qty as a
	// string, which is what the dashboard stores.
	return stockValue{Field: "qty", AsString: true}
}

// encode renders a new count in the document's original representation.
func (sv stockValue) encode(count int) interface{} {
	if sv.AsString {
		return strconv.Itoa(count)
	}
	switch sv.Raw.(type) {
	case int32:
		return int32(count)
	case int64:
		return int64(count)
	case float64:
		return float64(count)
	default:
		return count
	}
}

// parseCount reads the leading integer of a numeric string, so "12" and
// "12.5" both come out as 12 and garbage comes out as 0.
func parseCount(s string) int {
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
