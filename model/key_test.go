/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/redismodel/errors"
)

func TestKeyResolver(t *testing.T) {
	r := KeyResolver{TypeName: "Order", UniqueTogether: []string{"customer", "number"}, Separator: "."}

	tests := []struct {
		name string
		prim map[string]any
		want string
	}{
		{"pk wins", map[string]any{"pk": "p", "id": "i", "customer": "c", "number": 1}, "p"},
		{"id when pk empty", map[string]any{"pk": "", "id": "i"}, "i"},
		{"id when pk nil", map[string]any{"pk": nil, "id": json.Number("42")}, "42"},
		{"unique together", map[string]any{"customer": "acme", "number": json.Number("7")}, "acme.7"},
		{"numeric pk", map[string]any{"pk": 12}, "12"},
		{"float member", map[string]any{"customer": "acme", "number": 2.5}, "acme.2.5"},
		{"bool member", map[string]any{"customer": "acme", "number": true}, "acme.true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.prim)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// resolving the same state twice gives the same key
			again, err := r.Resolve(tt.prim)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestKeyResolverFailures(t *testing.T) {
	r := KeyResolver{TypeName: "Order", UniqueTogether: []string{"customer", "number"}, Separator: "."}

	for name, prim := range map[string]map[string]any{
		"empty":              {},
		"partial tuple":      {"customer": "acme"},
		"empty tuple member": {"customer": "", "number": 1},
		"composite pk":       {"pk": []any{"a"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(prim)
			assert.True(t, errors.IsKeyResolution(err), "got %v", err)
		})
	}

	_, err := KeyResolver{TypeName: "IceCream"}.Resolve(map[string]any{"flavor": "vanilla"})
	assert.True(t, errors.IsKeyResolution(err))
}

func TestKeyResolverSeparator(t *testing.T) {
	r := KeyResolver{UniqueTogether: []string{"a", "b"}, Separator: "|"}
	got, err := r.Resolve(map[string]any{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, "x|y", got)
}
