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
	"errors"
	"fmt"
	"sort"
	"strings"
)

// A Shape describes the keys a codec declares. Shapes are what Strict and
// CaseInsensitive inspect to learn a codec's key set; the set of variants is
// closed.
type Shape interface {
	isShape()
}

// PropsShape declares required keys. Fold marks keys that are matched
// without regard to case.
type PropsShape struct {
	Names []string
	Fold  bool
}

// PartialShape declares optional keys.
type PartialShape struct {
	Names []string
	Fold  bool
}

// IntersectionShape declares every key of every member.
type IntersectionShape struct {
	Members []Shape
}

// RefinementShape declares the keys of its base.
type RefinementShape struct {
	Base Shape
}

// UnionShape has a different key set per member, so it can't be flattened.
type UnionShape struct {
	Members []Shape
}

// OpaqueShape is the shape of a codec that declares no keys, such as a
// primitive.
type OpaqueShape struct {
	Name string
}

func (PropsShape) isShape()        {}
func (PartialShape) isShape()      {}
func (IntersectionShape) isShape() {}
func (RefinementShape) isShape()   {}
func (UnionShape) isShape()        {}
func (OpaqueShape) isShape()       {}

// ShapeOf returns the shape of a codec. Codecs that don't describe their
// keys are opaque.
func ShapeOf[T any](codec Codec[T]) Shape {
	if shaped, ok := codec.(interface{ Shape() Shape }); ok {
		return shaped.Shape()
	}
	return OpaqueShape{Name: codec.Name()}
}

var (
	errUnionShape  = errors.New("union shapes have no single key set")
	errOpaqueShape = errors.New("opaque shapes have no keys")
)

// keySet is a flattened shape. Folded keys are stored lower-cased.
type keySet struct {
	exact  map[string]struct{}
	folded map[string]struct{}
}

func (s keySet) contains(key string) bool {
	if _, ok := s.exact[key]; ok {
		return true
	}
	_, ok := s.folded[strings.ToLower(key)]
	return ok
}

func flattenShape(shape Shape) (keySet, error) {
	keys := keySet{exact: map[string]struct{}{}, folded: map[string]struct{}{}}
	if err := collectKeys(shape, keys); err != nil {
		return keySet{}, err
	}
	return keys, nil
}

func collectKeys(shape Shape, keys keySet) error {
	switch shape := shape.(type) {
	case PropsShape:
		addKeys(keys, shape.Names, shape.Fold)
	case PartialShape:
		addKeys(keys, shape.Names, shape.Fold)
	case RefinementShape:
		return collectKeys(shape.Base, keys)
	case IntersectionShape:
		for _, member := range shape.Members {
			if err := collectKeys(member, keys); err != nil {
				return err
			}
		}
	case UnionShape:
		return errUnionShape
	case OpaqueShape:
		return fmt.Errorf("%w: %s", errOpaqueShape, shape.Name)
	default:
		return fmt.Errorf("unknown shape %T", shape)
	}
	return nil
}

func addKeys(keys keySet, names []string, fold bool) {
	for _, name := range names {
		if fold {
			keys.folded[strings.ToLower(name)] = struct{}{}
		} else {
			keys.exact[name] = struct{}{}
		}
	}
}

// foldShape marks every key reachable through shape as case-insensitive.
func foldShape(shape Shape) Shape {
	switch shape := shape.(type) {
	case PropsShape:
		return PropsShape{Names: shape.Names, Fold: true}
	case PartialShape:
		return PartialShape{Names: shape.Names, Fold: true}
	case RefinementShape:
		return RefinementShape{Base: foldShape(shape.Base)}
	case IntersectionShape:
		members := make([]Shape, len(shape.Members))
		for i, member := range shape.Members {
			members[i] = foldShape(member)
		}
		return IntersectionShape{Members: members}
	case UnionShape:
		members := make([]Shape, len(shape.Members))
		for i, member := range shape.Members {
			members[i] = foldShape(member)
		}
		return UnionShape{Members: members}
	default:
		return shape
	}
}

type strictCodec[T any] struct {
	base Codec[T]
	keys keySet
}

// Strict wraps a codec for objects so that input keys the codec doesn't
// declare are errors. The declared keys are found by walking the codec's
// shape through intersections and refinements, once, when Strict is called.
//
// Each excess key is reported separately, in sorted order, with the message
// `excess key "k" found`. Excess keys are never stripped silently.
//
// Strict panics if base's shape contains a union or an opaque codec, since
// neither has a fixed set of keys.
func Strict[T any](base Codec[T]) Codec[T] {
	keys, err := flattenShape(ShapeOf(base))
	if err != nil {
		panic(fmt.Sprintf("verdad: strict %s: %v", base.Name(), err))
	}
	return &strictCodec[T]{base: base, keys: keys}
}

func (c *strictCodec[T]) Name() string      { return "Excess<" + c.base.Name() + ">" }
func (c *strictCodec[T]) Shape() Shape      { return ShapeOf(c.base) }
func (c *strictCodec[T]) Is(value any) bool { return c.base.Is(value) }
func (c *strictCodec[T]) Encode(value T) any {
	return c.base.Encode(value)
}

func (c *strictCodec[T]) Validate(input any, context Context) (T, Errors) {
	var zero T
	record, ok := asRecord(input)
	if !ok {
		return zero, failure(input, context)
	}
	value, errs := c.base.Validate(input, context)
	if len(errs) > 0 {
		return zero, errs
	}
	if excess := c.excessKeys(record); len(excess) > 0 {
		errs = make(Errors, len(excess))
		for i, key := range excess {
			errs[i] = &ValidationError{
				Context: context.With(key, "never"),
				Value:   record[key],
				Message: fmt.Sprintf("excess key %q found", key),
			}
		}
		return zero, errs
	}
	return value, nil
}

func (c *strictCodec[T]) excessKeys(record map[string]any) []string {
	var excess []string
	for key := range record {
		if !c.keys.contains(key) {
			excess = append(excess, key)
		}
	}
	sort.Strings(excess)
	return excess
}
