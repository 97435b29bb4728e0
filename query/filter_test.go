/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/redismodel/errors"
)

func TestParse(t *testing.T) {
	preds, err := Parse(Filters{
		"flavor":      "vanilla",
		"amount__gte": 30,
		"amount__lt":  50,
		"name__eq":    "x",
	})
	require.NoError(t, err)

	assert.Equal(t, []Predicate{
		{Field: "amount", Op: OpGte, Value: 30},
		{Field: "amount", Op: OpLt, Value: 50},
		{Field: "flavor", Op: OpEq, Value: "vanilla"},
		{Field: "name", Op: OpEq, Value: "x"},
	}, preds)
}

func TestParseUnsupportedSuffix(t *testing.T) {
	for _, key := range []string{"field__xyz", "amount__", "a__b__contains"} {
		_, err := Parse(Filters{key: 1})
		assert.True(t, errors.IsUnsupportedLookup(err), "%s: got %v", key, err)
	}
}

func TestParseLeadingUnderscore(t *testing.T) {
	preds, err := Parse(Filters{"__meta": 1})
	require.NoError(t, err)
	assert.Equal(t, "__meta", preds[0].Field)
	assert.Equal(t, OpEq, preds[0].Op)
}

func TestParseListLookups(t *testing.T) {
	_, err := Parse(Filters{"flavor__in": "vanilla"})
	assert.True(t, errors.IsValidationError(err))

	preds, err := Parse(Filters{"flavor__in": []string{"vanilla"}})
	require.NoError(t, err)
	assert.Equal(t, OpIn, preds[0].Op)
}

func TestPredicateMatchNumbers(t *testing.T) {
	prim := map[string]any{"amount": json.Number("42"), "price": json.Number("2.5")}

	tests := []struct {
		filters Filters
		want    bool
	}{
		{Filters{"amount": 42}, true},
		{Filters{"amount": int64(41)}, false},
		{Filters{"amount__gte": 42}, true},
		{Filters{"amount__gt": 42}, false},
		{Filters{"amount__lt": 43}, true},
		{Filters{"amount__lte": 41.5}, false},
		{Filters{"price__gt": 2}, true},
		{Filters{"price": 2.5}, true},
		{Filters{"amount__not": 42}, false},
		{Filters{"amount__in": []int{1, 42}}, true},
		{Filters{"amount__exclude": []int{1, 42}}, false},
		{Filters{"amount__gte": "30"}, false},
	}
	for _, tt := range tests {
		preds, err := Parse(tt.filters)
		require.NoError(t, err)
		assert.Equal(t, tt.want, MatchAll(preds, prim), "%v", tt.filters)
	}
}

func TestPredicateMatchDates(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	prim := map[string]any{"created": strfmt.DateTime(created).String()}

	tests := []struct {
		filters Filters
		want    bool
	}{
		{Filters{"created__gte": created}, true},
		{Filters{"created__gt": created}, false},
		{Filters{"created__lt": strfmt.DateTime(created.Add(time.Hour))}, true},
		{Filters{"created__gt": "2024-04-30"}, true},
		{Filters{"created": created}, true},
		{Filters{"created__lte": created.Add(-time.Second)}, false},
	}
	for _, tt := range tests {
		preds, err := Parse(tt.filters)
		require.NoError(t, err)
		assert.Equal(t, tt.want, MatchAll(preds, prim), "%v", tt.filters)
	}
}

func TestPredicateMatchAbsentField(t *testing.T) {
	prim := map[string]any{"flavor": "vanilla"}

	for filters, want := range map[string]bool{
		"amount__gte":     false,
		"amount__lt":      false,
		"amount":          false,
		"amount__not":     true,
		"amount__in":      false,
		"flavor__gte":     false,
		"flavor__not":     true,
		"amount__exclude": true,
	} {
		value := any(1)
		if filters == "amount__in" || filters == "amount__exclude" {
			value = []int{1}
		}
		preds, err := Parse(Filters{filters: value})
		require.NoError(t, err)
		assert.Equal(t, want, MatchAll(preds, prim), filters)
	}
}

func TestPredicateMatchStringsAndComposites(t *testing.T) {
	prim := map[string]any{
		"flavor":  "vanilla",
		"vegan":   true,
		"tags":    []any{"a", "b"},
		"nothing": nil,
	}

	preds, err := Parse(Filters{
		"flavor":  "vanilla",
		"vegan":   true,
		"tags":    []string{"a", "b"},
		"nothing": nil,
	})
	require.NoError(t, err)
	assert.True(t, MatchAll(preds, prim))

	preds, err = Parse(Filters{"flavor": "chocolate"})
	require.NoError(t, err)
	assert.False(t, MatchAll(preds, prim))
}

func TestEqualities(t *testing.T) {
	preds, err := Parse(Filters{"pk": "vanilla", "amount__gte": 1, "name__eq": "n"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"pk": "vanilla", "name": "n"}, Equalities(preds))
}

func TestEqualitiesUseCodecShape(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	preds, err := Parse(Filters{"day": day, "room": 7, "created": strfmt.DateTime(day)})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"day":     "2024-05-01T12:00:00Z",
		"room":    json.Number("7"),
		"created": strfmt.DateTime(day).String(),
	}, Equalities(preds))
}
