/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/suparena/redismodel/errors"
)

// Field names tried, in order, before falling back to unique-together fields.
const (
	PKField = "pk"
	IDField = "id"
)

// KeyResolver derives the primary key of an instance from its primitive form:
// the pk field, else the id field, else the UniqueTogether values joined
// with Separator.
type KeyResolver struct {
	TypeName       string
	UniqueTogether []string
	Separator      string
}

// Resolve returns the primary key for prim.
func (r KeyResolver) Resolve(prim map[string]any) (string, error) {
	if s, ok := keyString(prim[PKField]); ok {
		return s, nil
	}
	if s, ok := keyString(prim[IDField]); ok {
		return s, nil
	}

	if len(r.UniqueTogether) > 0 {
		parts := make([]string, len(r.UniqueTogether))
		complete := true
		for i, field := range r.UniqueTogether {
			s, ok := keyString(prim[field])
			if !ok {
				complete = false
				break
			}
			parts[i] = s
		}
		if complete {
			return strings.Join(parts, r.Separator), nil
		}
	}

	return "", errors.NewKeyResolutionError(r.TypeName)
}

// keyString renders scalar values as key text. Empty strings, nil and
// composite values do not produce a key.
func keyString(v any) (string, bool) {
	switch tv := v.(type) {
	case nil:
		return "", false
	case string:
		return tv, tv != ""
	case json.Number:
		return tv.String(), true
	case bool:
		return strconv.FormatBool(tv), true
	case fmt.Stringer:
		s := tv.String()
		return s, s != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	case reflect.String:
		return rv.String(), rv.Len() > 0
	}
	return "", false
}
