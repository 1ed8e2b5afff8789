// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the shape of an answer value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindList
	KindNumber
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is an answer value: a string, a list of strings, a number, or null.
// The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	list []string
	num  float64
}

// Null is the absent answer.
var Null = Value{}

// String returns a scalar string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List returns a list value. The items are copied.
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// ValueOf converts a decoded JSON/YAML value into a Value.
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null, nil
	case Value:
		return v.Clone(), nil
	case string:
		return String(v), nil
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return Null, fmt.Errorf("invalid number %q: %w", v, err)
		}
		return finite(n)
	case []string:
		return List(v...), nil
	case []any:
		items := make([]string, 0, len(v))
		for i, item := range v {
			switch it := item.(type) {
			case string:
				items = append(items, it)
			case float64, float32, int, int64, json.Number:
				n, err := ValueOf(it)
				if err != nil {
					return Null, err
				}
				items = append(items, n.Scalar())
			default:
				return Null, fmt.Errorf("list item %d: unsupported type %T", i, item)
			}
		}
		return List(items...), nil
	default:
		return Null, fmt.Errorf("unsupported answer type %T", raw)
	}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value carries no information: null, a blank
// string, or a list with no non-blank items.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindList:
		for _, item := range v.list {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Scalar returns the normalized scalar form used for condition matching.
// Strings are trimmed, numbers use the shortest decimal form, and lists are
// joined with ", ".
func (v Value) Scalar() string {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = strings.TrimSpace(item)
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Strings returns the value as a list of strings. Scalars become a single
// element list and null becomes nil.
func (v Value) Strings() []string {
	switch v.kind {
	case KindList:
		cp := make([]string, len(v.list))
		copy(cp, v.list)
		return cp
	case KindString, KindNumber:
		return []string{v.Scalar()}
	default:
		return nil
	}
}

// Float returns the numeric form of the value. Numeric strings are parsed.
// NaN and infinities are not numbers here.
func (v Value) Float() (float64, bool) {
	var n float64
	switch v.kind {
	case KindNumber:
		n = v.num
	case KindString:
		var err error
		n, err = strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func finite(n float64) (Value, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Null, fmt.Errorf("non-finite number %v", n)
	}
	return Number(n), nil
}

// Equal compares kind and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Clone returns a copy that shares no memory with v.
func (v Value) Clone() Value {
	if v.kind == KindList {
		return List(v.list...)
	}
	return v
}

// Interface returns the plain Go form of the value (string, []string,
// float64 or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		return v.Strings()
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Scalar()
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Null
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
