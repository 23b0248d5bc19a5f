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

package verdad_test

import (
	"testing"

	"verdad.dev/verdad"
	"verdad.dev/verdad/internal/assert"
)

type userPath struct {
	ID string
}

var userPathCodec = verdad.Object("UserPath",
	verdad.Required("id", verdad.String(), func(p *userPath) *string { return &p.ID }),
)

var playlistsPath = verdad.MustPath(verdad.Lit("users"), verdad.Param("id"), verdad.Lit("playlists"))

func TestPathString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, playlistsPath.String(), "/users/{id}/playlists")
	assert.Equal(t, playlistsPath.Parameters(), []string{"id"})
	assert.Len(t, playlistsPath.Segments(), 3)
	assert.True(t, playlistsPath.Segments()[1].IsParameter())
	assert.Equal(t, playlistsPath.Segments()[1].Name(), "id")

	optional := verdad.MustPath(verdad.Lit("v1"), verdad.Segment{}, verdad.Lit("items"))
	assert.Equal(t, optional.String(), "/v1/items")
	empty := verdad.MustPath()
	assert.Equal(t, empty.String(), "/")
}

func TestNewPathErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		segments []verdad.Segment
	}{
		{"bad identifier", []verdad.Segment{verdad.Param("1st")}},
		{"dash in identifier", []verdad.Segment{verdad.Param("user-id")}},
		{"duplicate parameter", []verdad.Segment{verdad.Param("id"), verdad.Param("id")}},
		{"slash in literal", []verdad.Segment{verdad.Lit("a/b")}},
		{"brace in literal", []verdad.Segment{verdad.Lit("{a}")}},
	}
	for _, testcase := range tests {
		testcase := testcase
		t.Run(testcase.name, func(t *testing.T) {
			t.Parallel()
			_, err := verdad.NewPath(testcase.segments...)
			assert.ErrorIs(t, err, verdad.ErrInvalidPath)
		})
	}
	assert.Panics(t, func() { verdad.MustPath(verdad.Param("a b")) })
}

func TestParsePath(t *testing.T) {
	t.Parallel()
	parsed, err := verdad.ParsePath("//users/{id}/playlists/")
	assert.Nil(t, err)
	assert.Equal(t, parsed.String(), playlistsPath.String())
	_, err = verdad.ParsePath("/users/{id}/{id}")
	assert.ErrorIs(t, err, verdad.ErrInvalidPath)
}

func TestPathMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want map[string]string
		ok   bool
	}{
		{"/users/42/playlists", map[string]string{"id": "42"}, true},
		{"users/42/playlists/", map[string]string{"id": "42"}, true},
		{"/users/a%20b/playlists", map[string]string{"id": "a b"}, true},
		{"/users/a%2Fb/playlists", map[string]string{"id": "a/b"}, true},
		{"/users//playlists", nil, false},
		{"/users/42", nil, false},
		{"/accounts/42/playlists", nil, false},
		{"/users/%zz/playlists", nil, false},
	}
	for _, testcase := range tests {
		testcase := testcase
		t.Run(testcase.path, func(t *testing.T) {
			t.Parallel()
			got, ok := playlistsPath.Match(testcase.path)
			assert.Equal(t, ok, testcase.ok)
			if testcase.ok {
				assert.Equal(t, got, testcase.want)
			}
		})
	}
}

func TestRenderPath(t *testing.T) {
	t.Parallel()
	rendered, err := verdad.RenderPath[userPath](playlistsPath, userPathCodec, userPath{ID: "42"})
	assert.Nil(t, err)
	assert.Equal(t, rendered, "/users/42/playlists")

	rendered, err = verdad.RenderPath[userPath](playlistsPath, userPathCodec, userPath{ID: "a/b c"})
	assert.Nil(t, err)
	assert.Equal(t, rendered, "/users/a%2Fb%20c/playlists")
	params, ok := playlistsPath.Match(rendered)
	assert.True(t, ok)
	assert.Equal(t, params["id"], "a/b c")

	type optionalPath struct {
		ID *string
	}
	optional := verdad.Object("OptionalPath",
		verdad.Optional("id", verdad.String(), func(p *optionalPath) **string { return &p.ID }),
	)
	_, err = verdad.RenderPath[optionalPath](playlistsPath, optional, optionalPath{})
	assert.ErrorIs(t, err, verdad.ErrUnrenderablePath)

	_, err = verdad.RenderPath(playlistsPath, verdad.Unknown(), any(map[string]any{"id": 42.0}))
	assert.ErrorIs(t, err, verdad.ErrUnrenderablePath)

	root, err := verdad.RenderPath(verdad.MustPath(), verdad.Null(), struct{}{})
	assert.Nil(t, err)
	assert.Equal(t, root, "/")
}
