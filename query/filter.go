/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"reflect"
	"sort"
	"strings"

	"github.com/suparena/redismodel/errors"
)

// Op is a comparison applied by a filter predicate.
type Op string

const (
	OpEq      Op = "eq"
	OpNot     Op = "not"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpIn      Op = "in"
	OpExclude Op = "exclude"
)

// suffixSep separates a field name from its lookup suffix, as in "amount__gte".
const suffixSep = "__"

var ops = map[string]Op{
	"eq":      OpEq,
	"not":     OpNot,
	"gt":      OpGt,
	"gte":     OpGte,
	"lt":      OpLt,
	"lte":     OpLte,
	"in":      OpIn,
	"exclude": OpExclude,
}

// Filters maps "field" or "field__suffix" to the value to compare against.
type Filters map[string]any

// Predicate is one parsed filter entry.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Parse turns filters into predicates ordered by field and op.
// An unknown suffix fails with errors.UnsupportedLookupError.
func Parse(filters Filters) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(filters))
	for key, value := range filters {
		p, err := parseOne(key, value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Field != preds[j].Field {
			return preds[i].Field < preds[j].Field
		}
		return preds[i].Op < preds[j].Op
	})
	return preds, nil
}

func parseOne(key string, value any) (Predicate, error) {
	idx := strings.LastIndex(key, suffixSep)
	if idx <= 0 {
		return Predicate{Field: key, Op: OpEq, Value: value}, nil
	}

	suffix := key[idx+len(suffixSep):]
	op, ok := ops[suffix]
	if !ok {
		return Predicate{}, errors.NewUnsupportedLookupError(key, suffix)
	}

	field := key[:idx]
	if op == OpIn || op == OpExclude {
		kind := reflect.ValueOf(value).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return Predicate{}, errors.NewValidationError(key, "expects a list value")
		}
	}
	return Predicate{Field: field, Op: op, Value: value}, nil
}

// Match reports whether the primitive form of an instance satisfies p.
// An absent field is compared as nil, so ordering lookups never match it.
func (p Predicate) Match(prim map[string]any) bool {
	stored := prim[p.Field]

	switch p.Op {
	case OpEq:
		return equal(stored, p.Value)
	case OpNot:
		return !equal(stored, p.Value)
	case OpGt:
		c, ok := compare(stored, p.Value)
		return ok && c > 0
	case OpGte:
		c, ok := compare(stored, p.Value)
		return ok && c >= 0
	case OpLt:
		c, ok := compare(stored, p.Value)
		return ok && c < 0
	case OpLte:
		c, ok := compare(stored, p.Value)
		return ok && c <= 0
	case OpIn:
		return contains(p.Value, stored)
	case OpExclude:
		return !contains(p.Value, stored)
	}
	return false
}

// MatchAll reports whether prim satisfies every predicate.
func MatchAll(preds []Predicate, prim map[string]any) bool {
	for _, p := range preds {
		if !p.Match(prim) {
			return false
		}
	}
	return true
}

// Equalities returns the plain equality predicates as a field map in the
// JSON codec's primitive shape, so a key resolved from it matches the key
// resolved from a stored record. A time.Time renders as RFC 3339, not as
// its String form.
func Equalities(preds []Predicate) map[string]any {
	eq := make(map[string]any)
	for _, p := range preds {
		if p.Op == OpEq {
			eq[p.Field] = normalize(p.Value)
		}
	}
	return eq
}

func contains(list, stored any) bool {
	rv := reflect.ValueOf(list)
	for i := 0; i < rv.Len(); i++ {
		if equal(stored, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}
