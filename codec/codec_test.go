/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec_test

import (
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/redismodel/codec"
	"github.com/suparena/redismodel/errors"
)

type flavor struct {
	PK      string          `json:"pk"`
	Name    string          `json:"name"`
	Amount  int64           `json:"amount"`
	Created strfmt.DateTime `json:"created"`
}

func (f *flavor) Validate(formats strfmt.Registry) error {
	if f.Name == "" {
		return stderrors.New("name is required")
	}
	return nil
}

func TestJSONToPrimitive(t *testing.T) {
	c := codec.NewJSON[flavor]()
	created := strfmt.DateTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	prim, err := c.ToPrimitive(&flavor{PK: "vanilla", Name: "Vanilla", Amount: 42, Created: created})
	require.NoError(t, err)

	assert.Equal(t, "vanilla", prim["pk"])
	assert.Equal(t, json.Number("42"), prim["amount"])
	assert.IsType(t, "", prim["created"])
}

func TestJSONRoundTrip(t *testing.T) {
	c := codec.NewJSON[flavor]()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &flavor{PK: "vanilla", Name: "Vanilla", Amount: 42, Created: strfmt.DateTime(created)}

	prim, err := c.ToPrimitive(in)
	require.NoError(t, err)
	data, err := c.Marshal(prim)
	require.NoError(t, err)

	decoded, err := c.Unmarshal(data)
	require.NoError(t, err)
	out, err := c.FromPrimitive(decoded)
	require.NoError(t, err)

	assert.Equal(t, in.PK, out.PK)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Amount, out.Amount)
	assert.True(t, time.Time(out.Created).Equal(created))
}

func TestJSONValidation(t *testing.T) {
	c := codec.NewJSON[flavor]()

	err := c.Validate(&flavor{PK: "x"})
	assert.True(t, errors.IsValidationError(err))

	_, err = c.FromPrimitive(map[string]any{"pk": "x"})
	assert.True(t, errors.IsValidationError(err))

	_, err = c.FromPrimitive(map[string]any{"pk": "x", "amount": "not a number", "name": "n"})
	assert.True(t, errors.IsValidationError(err))
}

func TestJSONUnmarshalCorrupt(t *testing.T) {
	c := codec.NewJSON[flavor]()

	for name, data := range map[string]string{
		"truncated": `{"pk": "va`,
		"array":     `[1, 2]`,
		"null":      `null`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Unmarshal([]byte(data))
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestJSONWithoutValidate(t *testing.T) {
	type plain struct {
		ID string `json:"id"`
	}
	c := codec.NewJSON[plain]()

	assert.NoError(t, c.Validate(&plain{}))
	out, err := c.FromPrimitive(map[string]any{"id": "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", out.ID)

	_, err = c.ToPrimitive(nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestJSONMapModel(t *testing.T) {
	c := codec.NewJSON[map[string]any]()

	in := map[string]any{"pk": "k", "n": json.Number("1")}
	prim, err := c.ToPrimitive(&in)
	require.NoError(t, err)
	out, err := c.FromPrimitive(prim)
	require.NoError(t, err)
	assert.Equal(t, "k", (*out)["pk"])
}

func TestJSONFromPrimitiveKeepsNumbers(t *testing.T) {
	type event struct {
		PK      string `json:"pk"`
		Payload any    `json:"payload"`
		Count   int64  `json:"count"`
	}
	c := codec.NewJSON[event]()

	in := &event{PK: "e", Payload: int64(9007199254740993), Count: 9007199254740993}
	prim, err := c.ToPrimitive(in)
	require.NoError(t, err)

	out, err := c.FromPrimitive(prim)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), out.Payload)
	assert.Equal(t, int64(9007199254740993), out.Count)

	m := codec.NewJSON[map[string]any]()
	rec, err := m.FromPrimitive(map[string]any{"big": json.Number("9007199254740993"), "ratio": json.Number("0.5")})
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), (*rec)["big"])
	assert.Equal(t, json.Number("0.5"), (*rec)["ratio"])
}
