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
	"net/url"
	"strings"
)

// A Segment is one component of a Path: either literal text or a named
// parameter. The zero Segment is empty and is dropped by NewPath, which makes
// it easy to build paths with components that are only sometimes present.
type Segment struct {
	literal   string
	parameter string
}

// Lit is a literal path segment.
func Lit(text string) Segment {
	return Segment{literal: text}
}

// Param is a path segment filled in from the path parameter named name.
func Param(name string) Segment {
	return Segment{parameter: name}
}

// IsParameter reports whether the segment is a parameter slot.
func (s Segment) IsParameter() bool { return s.parameter != "" }

// Name returns the parameter name, or the literal text for literal segments.
func (s Segment) Name() string {
	if s.IsParameter() {
		return s.parameter
	}
	return s.literal
}

func (s Segment) isZero() bool { return s.literal == "" && s.parameter == "" }

func (s Segment) String() string {
	if s.IsParameter() {
		return "{" + s.parameter + "}"
	}
	return s.literal
}

// A Path is the template for a method's URL path, such as
// /users/{userID}/playlists. Paths are immutable.
type Path struct {
	segments   []Segment
	parameters []string
}

// NewPath builds a path from segments, dropping zero Segments. Parameter
// names must be identifiers and must be unique. Literal segments may not
// contain slashes or braces.
func NewPath(segments ...Segment) (Path, error) {
	kept := make([]Segment, 0, len(segments))
	var parameters []string
	seen := make(map[string]struct{})
	for _, segment := range segments {
		switch {
		case segment.isZero():
			continue
		case segment.IsParameter():
			if !isIdentifier(segment.parameter) {
				return Path{}, fmt.Errorf("%w: parameter name %q is not an identifier", ErrInvalidPath, segment.parameter)
			}
			if _, ok := seen[segment.parameter]; ok {
				return Path{}, fmt.Errorf("%w: parameter %q appears twice", ErrInvalidPath, segment.parameter)
			}
			seen[segment.parameter] = struct{}{}
			parameters = append(parameters, segment.parameter)
		case strings.ContainsAny(segment.literal, "/{}"):
			return Path{}, fmt.Errorf("%w: literal segment %q contains a reserved character", ErrInvalidPath, segment.literal)
		}
		kept = append(kept, segment)
	}
	return Path{segments: kept, parameters: parameters}, nil
}

// MustPath is like NewPath, but panics on error. It's meant for package-level
// variables.
func MustPath(segments ...Segment) Path {
	path, err := NewPath(segments...)
	if err != nil {
		panic(err)
	}
	return path
}

// ParsePath parses the placeholder form produced by Path.String, for example
// "/users/{userID}/playlists". Leading, trailing, and repeated slashes are
// ignored.
func ParsePath(template string) (Path, error) {
	var segments []Segment
	for _, part := range strings.Split(template, "/") {
		switch {
		case part == "":
			continue
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			segments = append(segments, Param(part[1:len(part)-1]))
		default:
			segments = append(segments, Lit(part))
		}
	}
	return NewPath(segments...)
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Parameters returns the parameter names in the order they appear.
func (p Path) Parameters() []string {
	return append([]string(nil), p.parameters...)
}

// String renders the path with {name} placeholders. The empty path renders
// as "/". The placeholder form is also a valid chi route pattern.
func (p Path) String() string {
	parts := make([]string, len(p.segments))
	for i, segment := range p.segments {
		parts[i] = segment.String()
	}
	return "/" + strings.Join(parts, "/")
}

// pattern is the path with parameter names erased. Routers can't tell apart
// two paths with the same pattern.
func (p Path) pattern() string {
	parts := make([]string, len(p.segments))
	for i, segment := range p.segments {
		if segment.IsParameter() {
			parts[i] = "{}"
			continue
		}
		parts[i] = segment.literal
	}
	return "/" + strings.Join(parts, "/")
}

// Match extracts the parameters of urlPath, given in escaped form as returned
// by url.URL.EscapedPath. Parameter values are unescaped. It reports false if
// urlPath doesn't fit the template.
func (p Path) Match(urlPath string) (map[string]string, bool) {
	trimmed := strings.Trim(urlPath, "/")
	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}
	if len(parts) != len(p.segments) {
		return nil, false
	}
	parameters := make(map[string]string, len(p.parameters))
	for i, segment := range p.segments {
		part, err := url.PathUnescape(parts[i])
		if err != nil {
			return nil, false
		}
		if !segment.IsParameter() {
			if part != segment.literal {
				return nil, false
			}
			continue
		}
		if part == "" {
			return nil, false
		}
		parameters[segment.parameter] = part
	}
	return parameters, true
}

// RenderPath substitutes the encoded path parameters into the template.
// Every parameter must be present in the encoded record, and every value must
// encode to a string; otherwise nothing is rendered. Values are
// path-escaped.
func RenderPath[T any](p Path, codec Codec[T], value T) (string, error) {
	record, err := toStringRecord(codec.Encode(value))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrenderablePath, err)
	}
	return p.render(record)
}

func (p Path) render(record map[string]string) (string, error) {
	var builder strings.Builder
	for _, segment := range p.segments {
		builder.WriteByte('/')
		if !segment.IsParameter() {
			builder.WriteString(segment.literal)
			continue
		}
		value, ok := record[segment.parameter]
		if !ok {
			return "", fmt.Errorf("%w: missing parameter %q", ErrUnrenderablePath, segment.parameter)
		}
		builder.WriteString(url.PathEscape(value))
	}
	if builder.Len() == 0 {
		return "/", nil
	}
	return builder.String(), nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
