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
	"fmt"
	"sort"
	"strings"
)

// An ObjectCodec decodes JSON objects into a Go value of type T, usually a
// struct. Object codecs can be combined with Intersection, made
// case-insensitive with CaseInsensitive, and made strict with Strict.
//
// To preserve our ability to add methods without breaking backward
// compatibility, only this package implements ObjectCodec.
type ObjectCodec[T any] interface {
	Codec[T]
	Shape() Shape

	validateInto(dst *T, record map[string]any, context Context) Errors
	encodeInto(src *T, record map[string]any)
	isIn(src *T) bool
}

// A Field binds one object key to a part of T. Construct Fields with Required
// and Optional.
type Field[T any] interface {
	key() string
	required() bool
	expected() string
	validateInto(dst *T, record map[string]any, context Context) Errors
	encodeInto(src *T, record map[string]any)
	isIn(src *T) bool
}

type requiredField[T, F any] struct {
	name   string
	codec  Codec[F]
	access func(*T) *F
}

// Required declares a key that must be present. The accessor returns a
// pointer to the part of T that holds the key's value:
//
//	verdad.Required("userID", verdad.String(), func(p *PathParameters) *string {
//		return &p.UserID
//	})
//
// A missing key is validated as null, so codecs that accept null (Null,
// Nullable, Unknown) also accept a missing key.
func Required[T, F any](name string, codec Codec[F], access func(*T) *F) Field[T] {
	return &requiredField[T, F]{name: name, codec: codec, access: access}
}

func (f *requiredField[T, F]) key() string      { return f.name }
func (f *requiredField[T, F]) required() bool   { return true }
func (f *requiredField[T, F]) expected() string { return f.codec.Name() }

func (f *requiredField[T, F]) validateInto(dst *T, record map[string]any, context Context) Errors {
	raw, present := record[f.name]
	fieldContext := context.With(f.name, f.codec.Name())
	value, errs := f.codec.Validate(raw, fieldContext)
	if len(errs) > 0 {
		if !present {
			return failuref(nil, fieldContext, "required key %q is missing", f.name)
		}
		return errs
	}
	*f.access(dst) = value
	return nil
}

func (f *requiredField[T, F]) encodeInto(src *T, record map[string]any) {
	record[f.name] = f.codec.Encode(*f.access(src))
}

func (f *requiredField[T, F]) isIn(src *T) bool {
	return f.codec.Is(*f.access(src))
}

type optionalField[T, F any] struct {
	name   string
	codec  Codec[F]
	access func(*T) **F
}

// Optional declares a key that may be absent. Absent keys leave the pointer
// nil, and nil pointers are omitted when encoding. A key that is present
// with a null value is validated by codec like any other value.
func Optional[T, F any](name string, codec Codec[F], access func(*T) **F) Field[T] {
	return &optionalField[T, F]{name: name, codec: codec, access: access}
}

func (f *optionalField[T, F]) key() string      { return f.name }
func (f *optionalField[T, F]) required() bool   { return false }
func (f *optionalField[T, F]) expected() string { return f.codec.Name() }

func (f *optionalField[T, F]) validateInto(dst *T, record map[string]any, context Context) Errors {
	raw, present := record[f.name]
	if !present {
		*f.access(dst) = nil
		return nil
	}
	value, errs := f.codec.Validate(raw, context.With(f.name, f.codec.Name()))
	if len(errs) > 0 {
		return errs
	}
	*f.access(dst) = &value
	return nil
}

func (f *optionalField[T, F]) encodeInto(src *T, record map[string]any) {
	if value := *f.access(src); value != nil {
		record[f.name] = f.codec.Encode(*value)
	}
}

func (f *optionalField[T, F]) isIn(src *T) bool {
	value := *f.access(src)
	return value == nil || f.codec.Is(*value)
}

type objectCodec[T any] struct {
	name   string
	fields []Field[T]
	shape  Shape
}

// Object builds a codec for JSON objects from a list of fields. All failing
// fields are reported, not just the first. Keys that aren't declared are
// ignored; wrap the codec with Strict to reject them.
//
// Object panics if two fields share a key.
func Object[T any](name string, fields ...Field[T]) ObjectCodec[T] {
	seen := make(map[string]struct{}, len(fields))
	var required, optional []string
	for _, field := range fields {
		if _, ok := seen[field.key()]; ok {
			panic(fmt.Sprintf("verdad: object %s declares key %q twice", name, field.key()))
		}
		seen[field.key()] = struct{}{}
		if field.required() {
			required = append(required, field.key())
		} else {
			optional = append(optional, field.key())
		}
	}
	if name == "" {
		name = describeFields(fields)
	}
	return &objectCodec[T]{
		name:   name,
		fields: fields,
		shape:  objectShape(required, optional),
	}
}

func objectShape(required, optional []string) Shape {
	switch {
	case len(optional) == 0:
		return PropsShape{Names: required}
	case len(required) == 0:
		return PartialShape{Names: optional}
	default:
		return IntersectionShape{Members: []Shape{
			PropsShape{Names: required},
			PartialShape{Names: optional},
		}}
	}
}

func describeFields[T any](fields []Field[T]) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		optional := ""
		if !field.required() {
			optional = "?"
		}
		parts[i] = field.key() + optional + ": " + field.expected()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (c *objectCodec[T]) Name() string { return c.name }
func (c *objectCodec[T]) Shape() Shape { return c.shape }

func (c *objectCodec[T]) Is(value any) bool {
	typed, ok := value.(T)
	return ok && c.isIn(&typed)
}

func (c *objectCodec[T]) Validate(input any, context Context) (T, Errors) {
	var value T
	record, ok := asRecord(input)
	if !ok {
		return value, failure(input, context)
	}
	if errs := c.validateInto(&value, record, context); len(errs) > 0 {
		var zero T
		return zero, errs
	}
	return value, nil
}

func (c *objectCodec[T]) Encode(value T) any {
	record := make(map[string]any, len(c.fields))
	c.encodeInto(&value, record)
	return record
}

func (c *objectCodec[T]) validateInto(dst *T, record map[string]any, context Context) Errors {
	var errs Errors
	for _, field := range c.fields {
		errs = append(errs, field.validateInto(dst, record, context)...)
	}
	return errs
}

func (c *objectCodec[T]) encodeInto(src *T, record map[string]any) {
	for _, field := range c.fields {
		field.encodeInto(src, record)
	}
}

func (c *objectCodec[T]) isIn(src *T) bool {
	for _, field := range c.fields {
		if !field.isIn(src) {
			return false
		}
	}
	return true
}

type intersectionCodec[T any] struct {
	name    string
	members []ObjectCodec[T]
}

// Intersection combines object codecs that decode into the same T. Every
// member sees the whole input record and every member's failures are
// reported. When encoding, later members overwrite keys written by earlier
// ones.
func Intersection[T any](name string, members ...ObjectCodec[T]) ObjectCodec[T] {
	if name == "" {
		names := make([]string, len(members))
		for i, member := range members {
			names[i] = member.Name()
		}
		name = strings.Join(names, " & ")
	}
	return &intersectionCodec[T]{name: name, members: members}
}

func (c *intersectionCodec[T]) Name() string { return c.name }

func (c *intersectionCodec[T]) Shape() Shape {
	shapes := make([]Shape, len(c.members))
	for i, member := range c.members {
		shapes[i] = member.Shape()
	}
	return IntersectionShape{Members: shapes}
}

func (c *intersectionCodec[T]) Is(value any) bool {
	typed, ok := value.(T)
	return ok && c.isIn(&typed)
}

func (c *intersectionCodec[T]) Validate(input any, context Context) (T, Errors) {
	var value T
	record, ok := asRecord(input)
	if !ok {
		return value, failure(input, context)
	}
	if errs := c.validateInto(&value, record, context); len(errs) > 0 {
		var zero T
		return zero, errs
	}
	return value, nil
}

func (c *intersectionCodec[T]) Encode(value T) any {
	record := make(map[string]any)
	c.encodeInto(&value, record)
	return record
}

func (c *intersectionCodec[T]) validateInto(dst *T, record map[string]any, context Context) Errors {
	var errs Errors
	for i, member := range c.members {
		errs = append(errs, member.validateInto(dst, record, context.With("", c.members[i].Name()))...)
	}
	return errs
}

func (c *intersectionCodec[T]) encodeInto(src *T, record map[string]any) {
	for _, member := range c.members {
		member.encodeInto(src, record)
	}
}

func (c *intersectionCodec[T]) isIn(src *T) bool {
	for _, member := range c.members {
		if !member.isIn(src) {
			return false
		}
	}
	return true
}

type caseInsensitiveCodec[T any] struct {
	inner ObjectCodec[T]
	// declared maps lower-cased keys to the spelling the inner codec uses.
	declared map[string]string
}

// CaseInsensitive matches input keys against the declared keys of inner
// without regard to case, as HTTP header names require. An input key is
// rewritten to its declared spelling only when its lower-cased form is
// declared; other keys pass through untouched so that an intersection
// partner can still claim them.
//
// If two input keys fold to the same declared key, the one that sorts last
// wins. CaseInsensitive panics if two declared keys fold together, or if
// inner's keys can't be enumerated because its shape contains a union.
func CaseInsensitive[T any](inner ObjectCodec[T]) ObjectCodec[T] {
	keys, err := flattenShape(inner.Shape())
	if err != nil {
		panic(fmt.Sprintf("verdad: case-insensitive %s: %v", inner.Name(), err))
	}
	declared := make(map[string]string, len(keys.exact)+len(keys.folded))
	for _, set := range []map[string]struct{}{keys.exact, keys.folded} {
		for key := range set {
			lower := strings.ToLower(key)
			if other, ok := declared[lower]; ok && other != key {
				panic(fmt.Sprintf("verdad: case-insensitive %s: keys %q and %q collide", inner.Name(), other, key))
			}
			declared[lower] = key
		}
	}
	return &caseInsensitiveCodec[T]{inner: inner, declared: declared}
}

func (c *caseInsensitiveCodec[T]) Name() string { return "CaseInsensitive<" + c.inner.Name() + ">" }
func (c *caseInsensitiveCodec[T]) Shape() Shape { return foldShape(c.inner.Shape()) }
func (c *caseInsensitiveCodec[T]) Is(value any) bool {
	return c.inner.Is(value)
}

func (c *caseInsensitiveCodec[T]) Validate(input any, context Context) (T, Errors) {
	var value T
	record, ok := asRecord(input)
	if !ok {
		return value, failure(input, context)
	}
	if errs := c.validateInto(&value, record, context); len(errs) > 0 {
		var zero T
		return zero, errs
	}
	return value, nil
}

func (c *caseInsensitiveCodec[T]) Encode(value T) any {
	return c.inner.Encode(value)
}

func (c *caseInsensitiveCodec[T]) validateInto(dst *T, record map[string]any, context Context) Errors {
	return c.inner.validateInto(dst, c.canonicalize(record), context)
}

func (c *caseInsensitiveCodec[T]) encodeInto(src *T, record map[string]any) {
	c.inner.encodeInto(src, record)
}

func (c *caseInsensitiveCodec[T]) isIn(src *T) bool {
	return c.inner.isIn(src)
}

func (c *caseInsensitiveCodec[T]) canonicalize(record map[string]any) map[string]any {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	canonical := make(map[string]any, len(record))
	for _, key := range keys {
		if declared, ok := c.declared[strings.ToLower(key)]; ok {
			canonical[declared] = record[key]
			continue
		}
		canonical[key] = record[key]
	}
	return canonical
}

type recordCodec[V any] struct {
	value Codec[V]
}

// Record accepts objects with arbitrary keys whose values all satisfy value.
func Record[V any](value Codec[V]) Codec[map[string]V] {
	return &recordCodec[V]{value: value}
}

func (c *recordCodec[V]) Name() string {
	return "Record<string, " + c.value.Name() + ">"
}

func (c *recordCodec[V]) Is(value any) bool {
	typed, ok := value.(map[string]V)
	if !ok {
		return false
	}
	for _, v := range typed {
		if !c.value.Is(v) {
			return false
		}
	}
	return true
}

func (c *recordCodec[V]) Validate(input any, context Context) (map[string]V, Errors) {
	record, ok := asRecord(input)
	if !ok {
		return nil, failure(input, context)
	}
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	decoded := make(map[string]V, len(record))
	var errs Errors
	for _, key := range keys {
		value, valueErrs := c.value.Validate(record[key], context.With(key, c.value.Name()))
		if len(valueErrs) > 0 {
			errs = append(errs, valueErrs...)
			continue
		}
		decoded[key] = value
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return decoded, nil
}

func (c *recordCodec[V]) Encode(value map[string]V) any {
	encoded := make(map[string]any, len(value))
	for key, v := range value {
		encoded[key] = c.value.Encode(v)
	}
	return encoded
}
