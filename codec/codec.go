/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/redismodel/errors"
)

// Codec converts model instances to and from their primitive form and the
// serialized record stored in the backend.
type Codec[T any] interface {
	// ToPrimitive converts an instance to a map of field name to primitive value.
	ToPrimitive(entity *T) (map[string]any, error)
	// FromPrimitive builds and validates a new instance from a primitive map.
	FromPrimitive(prim map[string]any) (*T, error)
	// Validate checks an instance before it is written.
	Validate(entity *T) error
	// Marshal encodes a primitive map into a serialized record.
	Marshal(prim map[string]any) ([]byte, error)
	// Unmarshal decodes a serialized record into a primitive map.
	Unmarshal(data []byte) (map[string]any, error)
}

// Validatable is implemented by go-swagger generated models.
type Validatable interface {
	Validate(formats strfmt.Registry) error
}

// JSON is a Codec using encoding/json field names and encodings.
// Numbers are kept as json.Number so integers survive the round trip.
type JSON[T any] struct {
	formats strfmt.Registry
}

// Option configures a JSON codec
type Option func(*options)

type options struct {
	formats strfmt.Registry
}

// WithFormats sets the strfmt registry handed to Validate (default: strfmt.Default)
func WithFormats(formats strfmt.Registry) Option {
	return func(o *options) {
		o.formats = formats
	}
}

// NewJSON creates a JSON codec for type T
func NewJSON[T any](opts ...Option) *JSON[T] {
	o := options{formats: strfmt.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return &JSON[T]{formats: o.formats}
}

var _ Codec[struct{}] = (*JSON[struct{}])(nil)

func (c *JSON[T]) ToPrimitive(entity *T) (map[string]any, error) {
	if entity == nil {
		return nil, errors.NewValidationError("", "nil instance")
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, errors.WrapValidationError(fmt.Errorf("failed to encode instance: %w", err))
	}
	return c.Unmarshal(data)
}

func (c *JSON[T]) FromPrimitive(prim map[string]any) (*T, error) {
	data, err := json.Marshal(prim)
	if err != nil {
		return nil, errors.WrapValidationError(fmt.Errorf("failed to encode primitive: %w", err))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	result := new(T)
	if err := dec.Decode(result); err != nil {
		return nil, errors.WrapValidationError(fmt.Errorf("failed to decode instance: %w", err))
	}
	if err := c.Validate(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *JSON[T]) Validate(entity *T) error {
	if v, ok := any(entity).(Validatable); ok {
		return errors.WrapValidationError(v.Validate(c.formats))
	}
	return nil
}

func (c *JSON[T]) Marshal(prim map[string]any) ([]byte, error) {
	data, err := json.Marshal(prim)
	if err != nil {
		return nil, errors.WrapValidationError(fmt.Errorf("failed to encode record: %w", err))
	}
	return data, nil
}

func (c *JSON[T]) Unmarshal(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var prim map[string]any
	if err := dec.Decode(&prim); err != nil {
		return nil, errors.WrapValidationError(fmt.Errorf("failed to decode record: %w", err))
	}
	if prim == nil {
		return nil, errors.NewValidationError("", "record is not a JSON object")
	}
	return prim, nil
}
