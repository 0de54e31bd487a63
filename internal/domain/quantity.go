package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity is an optional numeric field. Input files routinely carry blanks
// or junk in numeric columns; those coerce to an invalid Quantity rather
// than zero, so downstream rules can tell "missing" from "none on hand".
type Quantity struct {
	Value float64
	Valid bool
}

// Qty returns a present Quantity.
func Qty(v float64) Quantity {
	return Quantity{Value: v, Valid: true}
}

// NoQty is the missing-value sentinel.
var NoQty = Quantity{}

// ParseQuantity coerces a raw cell value. Empty strings and anything that
// does not parse as a float become the missing sentinel.
func ParseQuantity(raw string) Quantity {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NoQty
	}
	// Tolerate thousands separators the way spreadsheets emit them.
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NoQty
	}
	return Qty(f)
}

// Float returns the value and whether it is present.
func (q Quantity) Float() (float64, bool) {
	return q.Value, q.Valid
}

// MarshalJSON renders a present value as a number and a missing one as null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(q.Value)
}

// UnmarshalJSON accepts a number or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*q = NoQty
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*q = Qty(v)
	return nil
}
