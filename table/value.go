package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/skillmatch/core"
)

// Kind identifies the type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	list []string
}

// Null returns the absent value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// List wraps items. The slice is not copied.
func List(items []string) Value { return Value{kind: KindList, list: items} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text renders a scalar value as a string. Null and list values render empty.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric value. Strings are parsed on demand.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseNumber(v.str)
	default:
		return 0, false
	}
}

// Truth returns the boolean value. Strings are coerced with ParseBool and
// every other kind is false.
func (v Value) Truth() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return ParseBool(v.str)
	default:
		return false
	}
}

// Strings returns the value as a list. Strings are split with ParseArray and
// null is empty. Booleans and numbers are not lists and return
// core.ErrMalformedArrayField along with an empty list.
func (v Value) Strings() ([]string, error) {
	switch v.kind {
	case KindNull:
		return []string{}, nil
	case KindList:
		return core.UniqueStrings(cleanItems(v.list)), nil
	case KindString:
		return ParseArray(v.str), nil
	default:
		return []string{}, fmt.Errorf("%w: %s value", core.ErrMalformedArrayField, v.kind)
	}
}

// IsNullToken reports whether raw represents an absent value.
func IsNullToken(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "null", "nan":
		return true
	}
	return false
}

// ParseBool coerces a raw token. Only true, t, yes, y and 1 (any case) are true.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1":
		return true
	}
	return false
}

// ParseNumber parses a raw token as a float. NaN and infinities are rejected.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if IsNullToken(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseArray splits a comma delimited cell, trims each item, drops empty and
// null items and removes repeats keeping first-seen order.
func ParseArray(raw string) []string {
	if IsNullToken(raw) {
		return []string{}
	}
	return core.UniqueStrings(cleanItems(strings.Split(raw, ",")))
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if IsNullToken(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}
