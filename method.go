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
	"context"
	"fmt"
	"sort"
	"strings"
)

// A Verb is the HTTP method of a Method.
type Verb uint8

const (
	VerbGet    Verb = 1
	VerbPost   Verb = 2
	VerbPut    Verb = 3
	VerbPatch  Verb = 4
	VerbDelete Verb = 5
)

// verbs is the order in which ForEachMethod visits a resource's methods.
var verbs = [...]Verb{VerbGet, VerbPost, VerbPut, VerbPatch, VerbDelete}

func (v Verb) String() string {
	switch v {
	case VerbGet:
		return "GET"
	case VerbPost:
		return "POST"
	case VerbPut:
		return "PUT"
	case VerbPatch:
		return "PATCH"
	case VerbDelete:
		return "DELETE"
	}
	return fmt.Sprintf("verb_%d", uint8(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Verb) MarshalText() ([]byte, error) {
	if v < VerbGet || v > VerbDelete {
		return nil, fmt.Errorf("invalid verb %d", uint8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Verbs are matched
// without regard to case.
func (v *Verb) UnmarshalText(data []byte) error {
	for _, candidate := range verbs {
		if strings.EqualFold(candidate.String(), string(data)) {
			*v = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid verb %q", string(data))
}

// Responses declares one side of a method's responses: the status codes it
// may use and the codec for its bodies.
type Responses[T any] struct {
	StatusCodes []int
	Body        Codec[T]
}

// A Definition is everything about a method except its verb and path. The
// type parameters are the decoded types of the path parameters (P), query
// parameters (Q), header parameters (H), request body (B), success response
// body (S), and error response body (E).
//
// Path, query, and header codecs receive string records. Use Null for methods
// without a request body.
type Definition[P, Q, H, B, S, E any] struct {
	PathParameters   Codec[P]
	QueryParameters  Codec[Q]
	HeaderParameters Codec[H]
	RequestBody      Codec[B]

	Success Responses[S]
	Error   Responses[E]
}

// A Call is the typed input of one method invocation.
type Call[P, Q, H, B any] struct {
	PathParameters   P
	QueryParameters  Q
	HeaderParameters H
	RequestBody      B
}

// A Response is a typed response body with its status code.
type Response[T any] struct {
	StatusCode int
	Body       T
}

// An Outcome is what a method's implementation returns: either a success
// response or an error response. Build Outcomes with Method.Succeed and
// Method.Fail. The zero Outcome holds neither and is treated as an internal
// fault by Handler.
type Outcome[S, E any] struct {
	success *Response[S]
	failure *Response[E]
}

// Success returns the success response, if the outcome holds one.
func (o Outcome[S, E]) Success() (*Response[S], bool) {
	return o.success, o.success != nil
}

// Failure returns the error response, if the outcome holds one.
func (o Outcome[S, E]) Failure() (*Response[E], bool) {
	return o.failure, o.failure != nil
}

// AnyMethod is implemented by every *Method, whatever its type parameters.
// Resources and APIs hold methods through this interface.
//
// To preserve our ability to add methods without breaking backward
// compatibility, only this package implements AnyMethod.
type AnyMethod interface {
	Verb() Verb
	Path() Path
	Describe() MethodDescription
	String() string

	isMethod()
}

// A MethodDescription is the untyped summary of a method, suitable for
// documentation and route listings. Codecs are described by name.
type MethodDescription struct {
	Verb               Verb   `json:"verb" yaml:"verb"`
	Path               string `json:"path" yaml:"path"`
	PathParameters     string `json:"pathParameters" yaml:"pathParameters"`
	QueryParameters    string `json:"queryParameters" yaml:"queryParameters"`
	HeaderParameters   string `json:"headerParameters" yaml:"headerParameters"`
	RequestBody        string `json:"requestBody" yaml:"requestBody"`
	SuccessStatusCodes []int  `json:"successStatusCodes" yaml:"successStatusCodes"`
	SuccessBody        string `json:"successBody" yaml:"successBody"`
	ErrorStatusCodes   []int  `json:"errorStatusCodes" yaml:"errorStatusCodes"`
	ErrorBody          string `json:"errorBody" yaml:"errorBody"`
}

// A Method is the contract for one verb on one path. Methods are immutable
// and safe for concurrent use; a single Method is typically shared by a
// Handler on the server and Do on the client.
type Method[P, Q, H, B, S, E any] struct {
	verb       Verb
	path       Path
	definition Definition[P, Q, H, B, S, E]
	successes  map[int]struct{}
	failures   map[int]struct{}
	call       ObjectCodec[Call[P, Q, H, B]]
}

// NewMethod validates a definition and builds a Method. It fails with
// ErrOverlappingStatusCodes if a status code is declared on both sides, and
// with ErrInvalidMethod if a codec is missing, a status code set is empty or
// out of range, or the path uses a parameter the path codec doesn't declare.
func NewMethod[P, Q, H, B, S, E any](verb Verb, path Path, definition Definition[P, Q, H, B, S, E]) (*Method[P, Q, H, B, S, E], error) {
	if verb < VerbGet || verb > VerbDelete {
		return nil, fmt.Errorf("%w: unknown verb %d", ErrInvalidMethod, uint8(verb))
	}
	switch {
	case definition.PathParameters == nil:
		return nil, fmt.Errorf("%w: %s %s: nil path parameters codec", ErrInvalidMethod, verb, path)
	case definition.QueryParameters == nil:
		return nil, fmt.Errorf("%w: %s %s: nil query parameters codec", ErrInvalidMethod, verb, path)
	case definition.HeaderParameters == nil:
		return nil, fmt.Errorf("%w: %s %s: nil header parameters codec", ErrInvalidMethod, verb, path)
	case definition.RequestBody == nil:
		return nil, fmt.Errorf("%w: %s %s: nil request body codec", ErrInvalidMethod, verb, path)
	case definition.Success.Body == nil:
		return nil, fmt.Errorf("%w: %s %s: nil success body codec", ErrInvalidMethod, verb, path)
	case definition.Error.Body == nil:
		return nil, fmt.Errorf("%w: %s %s: nil error body codec", ErrInvalidMethod, verb, path)
	}
	successes, err := statusSet("success", definition.Success.StatusCodes)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", verb, path, err)
	}
	failures, err := statusSet("error", definition.Error.StatusCodes)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", verb, path, err)
	}
	for code := range successes {
		if _, ok := failures[code]; ok {
			return nil, fmt.Errorf("%w: %s %s: %d", ErrOverlappingStatusCodes, verb, path, code)
		}
	}
	if keys, err := flattenShape(ShapeOf(definition.PathParameters)); err == nil {
		for _, name := range path.Parameters() {
			if !keys.contains(name) {
				return nil, fmt.Errorf("%w: %s %s: path parameter %q isn't declared by %s",
					ErrInvalidMethod, verb, path, name, definition.PathParameters.Name())
			}
		}
	}
	definition.Success.StatusCodes = append([]int(nil), definition.Success.StatusCodes...)
	definition.Error.StatusCodes = append([]int(nil), definition.Error.StatusCodes...)
	return &Method[P, Q, H, B, S, E]{
		verb:       verb,
		path:       path,
		definition: definition,
		successes:  successes,
		failures:   failures,
		call:       callCodec(definition),
	}, nil
}

// MustMethod is like NewMethod, but panics on error. It's meant for
// package-level variables.
func MustMethod[P, Q, H, B, S, E any](verb Verb, path Path, definition Definition[P, Q, H, B, S, E]) *Method[P, Q, H, B, S, E] {
	method, err := NewMethod(verb, path, definition)
	if err != nil {
		panic(err)
	}
	return method
}

func statusSet(side string, codes []int) (map[int]struct{}, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no %s status codes", ErrInvalidMethod, side)
	}
	set := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		if code < 100 || code > 599 {
			return nil, fmt.Errorf("%w: %s status code %d out of range", ErrInvalidMethod, side, code)
		}
		set[code] = struct{}{}
	}
	return set, nil
}

// callCodec decodes the composite record a Handler assembles from a request.
func callCodec[P, Q, H, B, S, E any](definition Definition[P, Q, H, B, S, E]) ObjectCodec[Call[P, Q, H, B]] {
	return Object("",
		Required("requestBody", definition.RequestBody, func(c *Call[P, Q, H, B]) *B {
			return &c.RequestBody
		}),
		Required("pathParameters", definition.PathParameters, func(c *Call[P, Q, H, B]) *P {
			return &c.PathParameters
		}),
		Required("queryParameters", definition.QueryParameters, func(c *Call[P, Q, H, B]) *Q {
			return &c.QueryParameters
		}),
		Required("headerParameters", definition.HeaderParameters, func(c *Call[P, Q, H, B]) *H {
			return &c.HeaderParameters
		}),
	)
}

func (m *Method[P, Q, H, B, S, E]) isMethod() {}

// Verb returns the method's HTTP verb.
func (m *Method[P, Q, H, B, S, E]) Verb() Verb { return m.verb }

// Path returns the method's path template.
func (m *Method[P, Q, H, B, S, E]) Path() Path { return m.path }

// Definition returns a copy of the method's definition.
func (m *Method[P, Q, H, B, S, E]) Definition() Definition[P, Q, H, B, S, E] {
	definition := m.definition
	definition.Success.StatusCodes = append([]int(nil), m.definition.Success.StatusCodes...)
	definition.Error.StatusCodes = append([]int(nil), m.definition.Error.StatusCodes...)
	return definition
}

func (m *Method[P, Q, H, B, S, E]) String() string {
	return m.verb.String() + " " + m.path.String()
}

// Describe summarizes the method.
func (m *Method[P, Q, H, B, S, E]) Describe() MethodDescription {
	return MethodDescription{
		Verb:               m.verb,
		Path:               m.path.String(),
		PathParameters:     m.definition.PathParameters.Name(),
		QueryParameters:    m.definition.QueryParameters.Name(),
		HeaderParameters:   m.definition.HeaderParameters.Name(),
		RequestBody:        m.definition.RequestBody.Name(),
		SuccessStatusCodes: sortedCodes(m.successes),
		SuccessBody:        m.definition.Success.Body.Name(),
		ErrorStatusCodes:   sortedCodes(m.failures),
		ErrorBody:          m.definition.Error.Body.Name(),
	}
}

// Succeed builds a success outcome. Handler checks the status code against
// the declared success codes.
func (m *Method[P, Q, H, B, S, E]) Succeed(statusCode int, body S) Outcome[S, E] {
	return Outcome[S, E]{success: &Response[S]{StatusCode: statusCode, Body: body}}
}

// Fail builds an error outcome. Handler checks the status code against the
// declared error codes.
func (m *Method[P, Q, H, B, S, E]) Fail(statusCode int, body E) Outcome[S, E] {
	return Outcome[S, E]{failure: &Response[E]{StatusCode: statusCode, Body: body}}
}

// Handler is shorthand for NewHandler(m, implementation, classify, options...).
func (m *Method[P, Q, H, B, S, E]) Handler(
	implementation Implementation[P, Q, H, B, S, E],
	classify ErrorClassifier[E],
	options ...HandlerOption,
) *Handler {
	return NewHandler(m, implementation, classify, options...)
}

// Do is shorthand for Do(ctx, client, m, call).
func (m *Method[P, Q, H, B, S, E]) Do(ctx context.Context, client *Client, call *Call[P, Q, H, B]) (*Response[S], error) {
	return Do(ctx, client, m, call)
}

func (m *Method[P, Q, H, B, S, E]) isSuccess(statusCode int) bool {
	_, ok := m.successes[statusCode]
	return ok
}

func (m *Method[P, Q, H, B, S, E]) isError(statusCode int) bool {
	_, ok := m.failures[statusCode]
	return ok
}

func sortedCodes(set map[int]struct{}) []int {
	codes := make([]int, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
