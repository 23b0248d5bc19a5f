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
	"strconv"
	"strings"
	"time"
)

// Path, query, and header parameters always arrive as strings. The codecs in
// this file parse such strings into richer values and format them back.

// stringWireCodec decodes a string and then parses it.
type stringWireCodec[T any] struct {
	name   string
	parse  func(string) (T, bool)
	format func(T) string
	is     func(T) bool
}

func (c *stringWireCodec[T]) Name() string { return c.name }

func (c *stringWireCodec[T]) Is(value any) bool {
	typed, ok := value.(T)
	if !ok {
		return false
	}
	return c.is == nil || c.is(typed)
}

func (c *stringWireCodec[T]) Validate(input any, context Context) (T, Errors) {
	var zero T
	s, ok := input.(string)
	if !ok {
		return zero, failure(input, context)
	}
	value, ok := c.parse(s)
	if !ok {
		return zero, failure(input, context)
	}
	return value, nil
}

func (c *stringWireCodec[T]) Encode(value T) any {
	return c.format(value)
}

// NumberFromString accepts strings holding a decimal or exponent number,
// such as "3" or "-1.5e3".
func NumberFromString() Codec[float64] {
	return &stringWireCodec[float64]{
		name: "NumberFromString",
		parse: func(s string) (float64, bool) {
			if strings.TrimSpace(s) != s || s == "" {
				return 0, false
			}
			f, err := strconv.ParseFloat(s, 64)
			return f, err == nil
		},
		format: func(f float64) string {
			return strconv.FormatFloat(f, 'g', -1, 64)
		},
	}
}

// IntFromString accepts strings holding a base-10 integer.
func IntFromString() Codec[int] {
	return &stringWireCodec[int]{
		name: "IntFromString",
		parse: func(s string) (int, bool) {
			n, err := strconv.Atoi(s)
			return n, err == nil
		},
		format: strconv.Itoa,
	}
}

// BoolFromString accepts exactly "true" and "false".
func BoolFromString() Codec[bool] {
	return &stringWireCodec[bool]{
		name: "BoolFromString",
		parse: func(s string) (bool, bool) {
			switch s {
			case "true":
				return true, true
			case "false":
				return false, true
			}
			return false, false
		},
		format: strconv.FormatBool,
	}
}

// DateTimeFromString accepts RFC 3339 timestamps. Encoded timestamps use
// nanosecond precision with trailing zeros removed.
func DateTimeFromString() Codec[time.Time] {
	return &stringWireCodec[time.Time]{
		name: "DateTimeFromString",
		parse: func(s string) (time.Time, bool) {
			t, err := time.Parse(time.RFC3339Nano, s)
			return t, err == nil
		},
		format: func(t time.Time) string {
			return t.Format(time.RFC3339Nano)
		},
	}
}

// LiteralFromString decodes a string with transformer and then requires the
// result to equal literal. It's how fixed discriminants, like a version
// number in a route, are read from string parameters.
func LiteralFromString[T comparable](literal T, transformer Codec[T]) Codec[T] {
	return &stringWireCodec[T]{
		name: transformer.Name() + "<" + Literal(literal).Name() + ">",
		parse: func(s string) (T, bool) {
			value, errs := transformer.Validate(s, nil)
			if len(errs) > 0 || value != literal {
				var zero T
				return zero, false
			}
			return value, true
		},
		format: func(value T) string {
			s, _ := transformer.Encode(value).(string)
			return s
		},
		is: func(value T) bool { return value == literal },
	}
}

// NumberLiteralFromString accepts strings whose numeric value is literal.
func NumberLiteralFromString(literal float64) Codec[float64] {
	return LiteralFromString(literal, NumberFromString())
}

// IntLiteralFromString accepts strings whose integer value is literal.
func IntLiteralFromString(literal int) Codec[int] {
	return LiteralFromString(literal, IntFromString())
}

// BoolLiteralFromString accepts only the string form of literal.
func BoolLiteralFromString(literal bool) Codec[bool] {
	return LiteralFromString(literal, BoolFromString())
}

type commaSeparatedCodec[T any] struct {
	element Codec[T]
}

// CommaSeparated accepts a comma-separated list, such as "a,b,c", decoding
// each element with element. The empty string is the empty list. Every
// failing element is reported.
func CommaSeparated[T any](element Codec[T]) Codec[[]T] {
	return &commaSeparatedCodec[T]{element: element}
}

func (c *commaSeparatedCodec[T]) Name() string {
	return "CommaSeparated<" + c.element.Name() + ">"
}

func (c *commaSeparatedCodec[T]) Is(value any) bool {
	typed, ok := value.([]T)
	if !ok {
		return false
	}
	for _, element := range typed {
		if !c.element.Is(element) {
			return false
		}
	}
	return true
}

func (c *commaSeparatedCodec[T]) Validate(input any, context Context) ([]T, Errors) {
	s, ok := input.(string)
	if !ok {
		return nil, failure(input, context)
	}
	if s == "" {
		return []T{}, nil
	}
	parts := strings.Split(s, ",")
	decoded := make([]T, 0, len(parts))
	var errs Errors
	for i, part := range parts {
		value, partErrs := c.element.Validate(part, context.With(strconv.Itoa(i), c.element.Name()))
		if len(partErrs) > 0 {
			errs = append(errs, partErrs...)
			continue
		}
		decoded = append(decoded, value)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return decoded, nil
}

func (c *commaSeparatedCodec[T]) Encode(value []T) any {
	parts := make([]string, len(value))
	for i, element := range value {
		parts[i], _ = c.element.Encode(element).(string)
	}
	return strings.Join(parts, ",")
}

// Unexpected holds the result of a HandleUnexpected codec. When Expected is
// false, Value is the zero value and Raw is the string that arrived.
type Unexpected[T any] struct {
	Expected bool
	Value    T
	Raw      string
}

type handleUnexpectedCodec[T any] struct {
	cases Codec[T]
}

// HandleUnexpected tolerates strings outside a set of known cases, so that a
// peer can add enum values without breaking older readers. Known cases
// decode to an Unexpected with Expected set; anything else that is a string
// decodes with Expected unset and the string kept in Raw. Non-strings still
// fail.
func HandleUnexpected[T any](cases Codec[T]) Codec[Unexpected[T]] {
	return &handleUnexpectedCodec[T]{cases: cases}
}

func (c *handleUnexpectedCodec[T]) Name() string {
	return "HandleUnexpected<" + c.cases.Name() + ">"
}

func (c *handleUnexpectedCodec[T]) Is(value any) bool {
	typed, ok := value.(Unexpected[T])
	if !ok {
		return false
	}
	return !typed.Expected || c.cases.Is(typed.Value)
}

func (c *handleUnexpectedCodec[T]) Validate(input any, context Context) (Unexpected[T], Errors) {
	if value, errs := c.cases.Validate(input, context); len(errs) == 0 {
		raw, _ := input.(string)
		return Unexpected[T]{Expected: true, Value: value, Raw: raw}, nil
	}
	s, ok := input.(string)
	if !ok {
		return Unexpected[T]{}, failure(input, context)
	}
	return Unexpected[T]{Raw: s}, nil
}

func (c *handleUnexpectedCodec[T]) Encode(value Unexpected[T]) any {
	if value.Expected {
		return c.cases.Encode(value.Value)
	}
	return value.Raw
}
