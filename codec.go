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
	"strings"
)

// A Codec converts between a typed Go value and its wire representation, and
// validates untrusted wire input on the way in.
//
// Wire values are the JSON-compatible Go values produced by encoding/json when
// unmarshaling into an empty interface: nil, bool, float64, string, []any and
// map[string]any. Codecs that expect records also accept map[string]string,
// which is how path, query, and header parameters arrive from transports.
//
// Encode must never fail for a well-typed value. Validate may fail for any
// input; it reports every problem it finds rather than stopping at the first.
// Codecs are immutable and safe to share between goroutines.
type Codec[T any] interface {
	// Name describes the values the codec accepts, for example "Array<string>".
	Name() string
	// Is reports whether value is already a T that the codec would produce.
	Is(value any) bool
	// Validate decodes input. The context locates input within the value
	// being decoded; use Decode to start from the root.
	Validate(input any, context Context) (T, Errors)
	// Encode converts a value to its wire representation.
	Encode(value T) any
}

// Decode validates input with codec, starting from the root context. On
// failure, the returned error is a *DecodeError.
func Decode[T any](codec Codec[T], input any) (T, error) {
	value, errs := codec.Validate(input, rootContext(codec.Name()))
	if len(errs) > 0 {
		var zero T
		return zero, &DecodeError{Codec: codec.Name(), Errors: errs}
	}
	return value, nil
}

// A ContextEntry is one step on the path from the root of a decoded value to
// the value being validated.
type ContextEntry struct {
	// Key is the object key or array index. It's empty for the root.
	Key string
	// Expected is the name of the codec responsible for this step.
	Expected string
}

// Context is the ordered path of keys leading to a value.
type Context []ContextEntry

func rootContext(name string) Context {
	return Context{{Expected: name}}
}

// With returns a copy of the context extended by one step. The receiver is
// never modified, so sibling validations can share a parent context.
func (c Context) With(key, expected string) Context {
	extended := make(Context, len(c), len(c)+1)
	copy(extended, c)
	return append(extended, ContextEntry{Key: key, Expected: expected})
}

// Path renders the keys of the context joined by dots, for example
// "requestBody.items.0". The root is rendered as an empty string.
func (c Context) Path() string {
	keys := make([]string, 0, len(c))
	for _, entry := range c {
		if entry.Key != "" {
			keys = append(keys, entry.Key)
		}
	}
	return strings.Join(keys, ".")
}

// Expected returns the name of the innermost codec in the context.
func (c Context) Expected() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1].Expected
}

// A ValidationError is a single leaf of a failed validation: where it
// happened, what was expected there, and the value actually found.
type ValidationError struct {
	Context Context
	Value   any
	// Message overrides the default description, if set.
	Message string
}

func (e *ValidationError) Error() string {
	location := e.Context.Path()
	if location == "" {
		location = "<root>"
	}
	if e.Message != "" {
		return location + ": " + e.Message
	}
	return fmt.Sprintf("%s: invalid value %s supplied, expected %s", location, describeValue(e.Value), e.Context.Expected())
}

// Errors is the ordered collection of leaves produced by a failed
// validation. A nil or empty Errors means success.
type Errors []*ValidationError

func (e Errors) Error() string {
	messages := make([]string, len(e))
	for i, leaf := range e {
		messages[i] = leaf.Error()
	}
	return strings.Join(messages, "; ")
}

// failure builds a single-leaf Errors.
func failure(input any, context Context) Errors {
	return Errors{{Context: context, Value: input}}
}

func failuref(input any, context Context, template string, args ...any) Errors {
	return Errors{{Context: context, Value: input, Message: fmt.Sprintf(template, args...)}}
}

// A DecodeError reports that a value failed validation. Errors holds every
// failing leaf, in the order the codecs found them.
type DecodeError struct {
	Codec  string
	Errors Errors
}

func (e *DecodeError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("decode %s: %v", e.Codec, e.Errors[0])
	}
	return fmt.Sprintf("decode %s: %d errors: %v", e.Codec, len(e.Errors), e.Errors)
}

func describeValue(value any) string {
	if value == nil {
		return "null"
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	const maxLen = 64
	if len(data) > maxLen {
		return string(data[:maxLen]) + "..."
	}
	return string(data)
}

// asRecord converts the record shapes a codec may receive into one map.
func asRecord(input any) (map[string]any, bool) {
	switch record := input.(type) {
	case map[string]any:
		return record, true
	case map[string]string:
		converted := make(map[string]any, len(record))
		for key, value := range record {
			converted[key] = value
		}
		return converted, true
	default:
		return nil, false
	}
}

// toStringRecord flattens an encoded record into the string map used for
// paths, query strings, and headers. Keys with nil values are dropped.
func toStringRecord(encoded any) (map[string]string, error) {
	switch record := encoded.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return record, nil
	case map[string]any:
		converted := make(map[string]string, len(record))
		for key, value := range record {
			switch value := value.(type) {
			case nil:
				continue
			case string:
				converted[key] = value
			default:
				return nil, fmt.Errorf("value for %q is %T, not string", key, value)
			}
		}
		return converted, nil
	default:
		return nil, fmt.Errorf("encoded %T is not a record", encoded)
	}
}
