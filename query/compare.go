/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"bytes"
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
)

// compare orders stored against want. Only numbers and dates are ordered;
// ok is false for every other combination.
func compare(stored, want any) (int, bool) {
	if a, ok := asInt(stored); ok {
		if b, ok := asInt(want); ok {
			return cmpOrdered(a, b), true
		}
	}
	if a, ok := asFloat(stored); ok {
		if b, ok := asFloat(want); ok {
			return cmpOrdered(a, b), true
		}
		return 0, false
	}
	if a, ok := asTime(stored); ok {
		if b, ok := asTime(want); ok {
			return a.Compare(b), true
		}
	}
	return 0, false
}

func equal(stored, want any) bool {
	if stored == nil || want == nil {
		return stored == nil && want == nil
	}
	if c, ok := compare(stored, want); ok && isNumberOrTime(want) {
		return c == 0
	}
	switch w := want.(type) {
	case string:
		s, ok := stored.(string)
		return ok && s == w
	case bool:
		b, ok := stored.(bool)
		return ok && b == w
	}
	return reflect.DeepEqual(stored, normalize(want))
}

func isNumberOrTime(v any) bool {
	if _, ok := asFloat(v); ok {
		return true
	}
	switch v.(type) {
	case time.Time, *time.Time, strfmt.DateTime, *strfmt.DateTime, strfmt.Date, *strfmt.Date:
		return true
	}
	return false
}

// normalize brings a filter value to the shape the JSON codec produces, so
// composite values compare field for field.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

func cmpOrdered[N int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case strfmt.DateTime:
		return time.Time(t), true
	case *strfmt.DateTime:
		if t != nil {
			return time.Time(*t), true
		}
	case strfmt.Date:
		return time.Time(t), true
	case *strfmt.Date:
		if t != nil {
			return time.Time(*t), true
		}
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if dt, err := strfmt.ParseDateTime(t); err == nil {
			return time.Time(dt), true
		}
		if d, err := time.Parse(strfmt.RFC3339FullDate, t); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
