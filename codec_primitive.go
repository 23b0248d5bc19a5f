// Copyright 2025 The Verdad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package verdad

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// primitiveCodec covers the scalar codecs, whose wire and Go representations
// differ only in numeric widening.
type primitiveCodec[T any] struct {
	name   string
	accept func(any) (T, bool)
	encode func(T) any
}

var _ Codec[string] = (*primitiveCodec[string])(nil)

func (c *primitiveCodec[T]) Name() string { return c.name }

func (c *primitiveCodec[T]) Is(value any) bool {
	_, ok := value.(T)
	return ok
}

func (c *primitiveCodec[T]) Validate(input any, context Context) (T, Errors) {
	value, ok := c.accept(input)
	if !ok {
		var zero T
		return zero, failure(input, context)
	}
	return value, nil
}

func (c *primitiveCodec[T]) Encode(value T) any {
	if c.encode == nil {
		return value
	}
	return c.encode(value)
}

// String accepts JSON strings.
func String() Codec[string] {
	return &primitiveCodec[string]{
		name: "string",
		accept: func(input any) (string, bool) {
			s, ok := input.(string)
			return s, ok
		},
	}
}

// Bool accepts JSON booleans.
func Bool() Codec[bool] {
	return &primitiveCodec[bool]{
		name: "boolean",
		accept: func(input any) (bool, bool) {
			b, ok := input.(bool)
			return b, ok
		},
	}
}

// Number accepts any JSON number.
func Number() Codec[float64] {
	return &primitiveCodec[float64]{
		name:   "number",
		accept: toFloat,
	}
}

// Int accepts JSON numbers without a fractional part.
func Int() Codec[int] {
	return &primitiveCodec[int]{
		name: "Int",
		accept: func(input any) (int, bool) {
			switch n := input.(type) {
			case int:
				return n, true
			case int64:
				return int(n), true
			case int32:
				return int(n), true
			}
			f, ok := toFloat(input)
			// -MinInt is exact as a float, unlike MaxInt.
			if !ok || f != math.Trunc(f) || f >= -float64(math.MinInt) || f < float64(math.MinInt) {
				return 0, false
			}
			return int(f), true
		},
	}
}

// Null accepts only JSON null. It's the usual request body codec for methods
// that don't take a body.
func Null() Codec[struct{}] {
	return &primitiveCodec[struct{}]{
		name: "null",
		accept: func(input any) (struct{}, bool) {
			return struct{}{}, input == nil
		},
		encode: func(struct{}) any { return nil },
	}
}

// Unknown accepts any input and passes it through unchanged.
func Unknown() Codec[any] {
	return &primitiveCodec[any]{
		name: "unknown",
		accept: func(input any) (any, bool) {
			return input, true
		},
	}
}

func toFloat(input any) (float64, bool) {
	switch n := input.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

type literalCodec[T comparable] struct {
	value T
}

// Literal accepts exactly one value. Inputs of a different Go type with the
// same underlying kind are accepted too, so Literal[Genre]("rock") decodes
// the JSON string "rock" and Literal(2) decodes the JSON number 2.
func Literal[T comparable](value T) Codec[T] {
	return &literalCodec[T]{value: value}
}

func (c *literalCodec[T]) Name() string {
	if s, ok := any(c.value).(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if reflect.ValueOf(c.value).Kind() == reflect.String {
		return fmt.Sprintf("%q", fmt.Sprint(c.value))
	}
	return fmt.Sprint(c.value)
}

func (c *literalCodec[T]) Is(value any) bool {
	typed, ok := value.(T)
	return ok && typed == c.value
}

func (c *literalCodec[T]) Validate(input any, context Context) (T, Errors) {
	if literalMatches(input, c.value) {
		return c.value, nil
	}
	var zero T
	return zero, failure(input, context)
}

func (c *literalCodec[T]) Encode(value T) any {
	return value
}

func literalMatches[T comparable](input any, want T) bool {
	if typed, ok := input.(T); ok {
		return typed == want
	}
	if input == nil {
		return false
	}
	wantValue := reflect.ValueOf(want)
	inputValue := reflect.ValueOf(input)
	switch {
	case wantValue.Kind() == reflect.String && inputValue.Kind() == reflect.String:
		return inputValue.String() == wantValue.String()
	case wantValue.Kind() == reflect.Bool && inputValue.Kind() == reflect.Bool:
		return inputValue.Bool() == wantValue.Bool()
	case wantValue.CanFloat() || wantValue.CanInt() || wantValue.CanUint():
		got, ok := toFloat(input)
		if !ok {
			return false
		}
		return got == numericValue(wantValue)
	}
	return false
}

func numericValue(value reflect.Value) float64 {
	switch {
	case value.CanInt():
		return float64(value.Int())
	case value.CanUint():
		return float64(value.Uint())
	default:
		return value.Float()
	}
}

// Enum accepts any of the listed values, compared as by Literal. It's a
// shorthand for a Union of Literals.
func Enum[T comparable](name string, values ...T) Codec[T] {
	members := make([]Codec[T], len(values))
	names := make([]string, len(values))
	for i, value := range values {
		members[i] = Literal(value)
		names[i] = members[i].Name()
	}
	if name == "" {
		name = strings.Join(names, " | ")
	}
	return Union(name, members...)
}
