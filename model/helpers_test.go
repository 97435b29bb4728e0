/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/redismodel/backend"
	"github.com/suparena/redismodel/codec"
	"github.com/suparena/redismodel/model"
)

type IceCream struct {
	PK      string          `json:"pk,omitempty"`
	Flavor  string          `json:"flavor"`
	Amount  *int64          `json:"amount,omitempty"`
	Created strfmt.DateTime `json:"created"`
}

func (i *IceCream) Validate(formats strfmt.Registry) error {
	if i.Flavor == "" {
		return stderrors.New("flavor is required")
	}
	return nil
}

// Order has no pk field and is keyed by id or customer+number
type Order struct {
	ID       string `json:"id,omitempty"`
	Customer string `json:"customer"`
	Number   int    `json:"number"`
}

var created = strfmt.DateTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

func amount(n int64) *int64 { return &n }

func iceCream(pk string, amt *int64) *IceCream {
	return &IceCream{PK: pk, Flavor: pk, Amount: amt, Created: created}
}

type layoutCase struct {
	name  string
	build func(kv backend.Backend, opts model.Options) (*model.KVStore[IceCream], error)
}

var layouts = []layoutCase{
	{
		name: "PerKey",
		build: func(kv backend.Backend, opts model.Options) (*model.KVStore[IceCream], error) {
			return model.NewPerKey[IceCream](kv, codec.NewJSON[IceCream](), opts)
		},
	},
	{
		name: "SharedHash",
		build: func(kv backend.Backend, opts model.Options) (*model.KVStore[IceCream], error) {
			return model.NewSharedHash[IceCream](kv, codec.NewJSON[IceCream](), opts)
		},
	},
}

func forEachLayout(t *testing.T, fn func(t *testing.T, lc layoutCase)) {
	for _, lc := range layouts {
		t.Run(lc.name, func(t *testing.T) {
			fn(t, lc)
		})
	}
}

func assertSameIceCream(t *testing.T, want, got *IceCream) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.PK, got.PK)
	assert.Equal(t, want.Flavor, got.Flavor)
	assert.Equal(t, want.Amount, got.Amount)
	assert.True(t, time.Time(want.Created).Equal(time.Time(got.Created)), "created %v != %v", want.Created, got.Created)
}

func pks(items []*IceCream) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.PK)
	}
	return out
}
