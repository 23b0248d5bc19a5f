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
	"reflect"
	"strconv"
	"strings"
)

type arrayCodec[T any] struct {
	element Codec[T]
}

// Array accepts JSON arrays whose elements all satisfy element. Every failing
// element is reported, keyed by its index.
func Array[T any](element Codec[T]) Codec[[]T] {
	return &arrayCodec[T]{element: element}
}

func (c *arrayCodec[T]) Name() string { return "Array<" + c.element.Name() + ">" }

func (c *arrayCodec[T]) Is(value any) bool {
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

func (c *arrayCodec[T]) Validate(input any, context Context) ([]T, Errors) {
	elements, ok := asList(input)
	if !ok {
		return nil, failure(input, context)
	}
	decoded := make([]T, 0, len(elements))
	var errs Errors
	for i, element := range elements {
		value, elementErrs := c.element.Validate(element, context.With(strconv.Itoa(i), c.element.Name()))
		if len(elementErrs) > 0 {
			errs = append(errs, elementErrs...)
			continue
		}
		decoded = append(decoded, value)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return decoded, nil
}

func (c *arrayCodec[T]) Encode(value []T) any {
	encoded := make([]any, len(value))
	for i, element := range value {
		encoded[i] = c.element.Encode(element)
	}
	return encoded
}

func asList(input any) ([]any, bool) {
	switch list := input.(type) {
	case []any:
		return list, true
	case []string:
		converted := make([]any, len(list))
		for i, s := range list {
			converted[i] = s
		}
		return converted, true
	case nil:
		return nil, false
	}
	value := reflect.ValueOf(input)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return nil, false
	}
	converted := make([]any, value.Len())
	for i := range converted {
		converted[i] = value.Index(i).Interface()
	}
	return converted, true
}

type unionCodec[T any] struct {
	name    string
	members []Codec[T]
}

// Union accepts input that satisfies any member, trying members in order. If
// no member accepts the input, the failures of every member are reported.
// Encoding uses the first member whose Is method accepts the value.
//
// Unions can't be made strict: Strict panics if its codec contains one.
func Union[T any](name string, members ...Codec[T]) Codec[T] {
	if name == "" {
		names := make([]string, len(members))
		for i, member := range members {
			names[i] = member.Name()
		}
		name = "(" + strings.Join(names, " | ") + ")"
	}
	return &unionCodec[T]{name: name, members: members}
}

func (c *unionCodec[T]) Name() string { return c.name }

func (c *unionCodec[T]) Shape() Shape {
	shapes := make([]Shape, len(c.members))
	for i, member := range c.members {
		shapes[i] = ShapeOf(member)
	}
	return UnionShape{Members: shapes}
}

func (c *unionCodec[T]) Is(value any) bool {
	for _, member := range c.members {
		if member.Is(value) {
			return true
		}
	}
	return false
}

func (c *unionCodec[T]) Validate(input any, context Context) (T, Errors) {
	var errs Errors
	for i, member := range c.members {
		value, memberErrs := member.Validate(input, context.With(strconv.Itoa(i), member.Name()))
		if len(memberErrs) == 0 {
			return value, nil
		}
		errs = append(errs, memberErrs...)
	}
	var zero T
	if len(c.members) == 0 {
		return zero, failure(input, context)
	}
	return zero, errs
}

func (c *unionCodec[T]) Encode(value T) any {
	for _, member := range c.members {
		if member.Is(value) {
			return member.Encode(value)
		}
	}
	if len(c.members) == 0 {
		return nil
	}
	return c.members[0].Encode(value)
}

type nullableCodec[T any] struct {
	inner Codec[T]
}

// Nullable accepts null as well as anything inner accepts. Null decodes to a
// nil pointer, and a nil pointer encodes to null.
func Nullable[T any](inner Codec[T]) Codec[*T] {
	return &nullableCodec[T]{inner: inner}
}

func (c *nullableCodec[T]) Name() string { return c.inner.Name() + " | null" }

func (c *nullableCodec[T]) Shape() Shape {
	return UnionShape{Members: []Shape{ShapeOf(c.inner), OpaqueShape{Name: "null"}}}
}

func (c *nullableCodec[T]) Is(value any) bool {
	typed, ok := value.(*T)
	return ok && (typed == nil || c.inner.Is(*typed))
}

func (c *nullableCodec[T]) Validate(input any, context Context) (*T, Errors) {
	if input == nil {
		return nil, nil
	}
	value, errs := c.inner.Validate(input, context)
	if len(errs) > 0 {
		return nil, errs
	}
	return &value, nil
}

func (c *nullableCodec[T]) Encode(value *T) any {
	if value == nil {
		return nil
	}
	return c.inner.Encode(*value)
}

type refinementCodec[T any] struct {
	name      string
	base      Codec[T]
	predicate func(T) bool
}

// Refine narrows base to the values for which predicate returns true. The
// refinement keeps base's shape, so refined objects can still be made
// strict.
func Refine[T any](base Codec[T], name string, predicate func(T) bool) Codec[T] {
	return &refinementCodec[T]{name: name, base: base, predicate: predicate}
}

func (c *refinementCodec[T]) Name() string { return c.name }
func (c *refinementCodec[T]) Shape() Shape { return RefinementShape{Base: ShapeOf(c.base)} }

func (c *refinementCodec[T]) Is(value any) bool {
	typed, ok := value.(T)
	return ok && c.base.Is(value) && c.predicate(typed)
}

func (c *refinementCodec[T]) Validate(input any, context Context) (T, Errors) {
	value, errs := c.base.Validate(input, context)
	if len(errs) > 0 {
		return value, errs
	}
	if !c.predicate(value) {
		var zero T
		return zero, failure(input, context.With("", c.name))
	}
	return value, nil
}

func (c *refinementCodec[T]) Encode(value T) any { return c.base.Encode(value) }

type namedCodec[T any] struct {
	name  string
	inner Codec[T]
}

// Named gives a codec a new name, for error messages and documentation.
func Named[T any](name string, inner Codec[T]) Codec[T] {
	return &namedCodec[T]{name: name, inner: inner}
}

func (c *namedCodec[T]) Name() string      { return c.name }
func (c *namedCodec[T]) Shape() Shape      { return ShapeOf(c.inner) }
func (c *namedCodec[T]) Is(value any) bool { return c.inner.Is(value) }
func (c *namedCodec[T]) Encode(value T) any {
	return c.inner.Encode(value)
}

func (c *namedCodec[T]) Validate(input any, context Context) (T, Errors) {
	return c.inner.Validate(input, context)
}
