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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"verdad.dev/verdad"
	"verdad.dev/verdad/internal/assert"
)

func TestRoutes(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	assert.Nil(t, run(context.Background(), []string{"-routes"}, &stdout, &stderr))
	var routes []map[string]any
	assert.Nil(t, json.Unmarshal(stdout.Bytes(), &routes))
	assert.Len(t, routes, 1)
	assert.Equal(t, routes[0]["resource"], any("playlists"))
	assert.Equal(t, routes[0]["verb"], any("GET"))
	assert.Equal(t, routes[0]["path"], any("/users/{userID}/playlists"))
	assert.Equal(t, routes[0]["errorStatusCodes"], any([]any{400.0, 401.0, 500.0}))
}

func TestVersion(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	assert.Nil(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Equal(t, stdout.String(), verdad.Version+"\n")
}

func TestInvalidFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"grant without user", []string{"-grant", "secret"}},
		{"unknown level", []string{"-log-level", "loud"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, testcase := range tests {
		testcase := testcase
		t.Run(testcase.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			assert.NotNil(t, run(context.Background(), testcase.args, &stdout, &stderr))
		})
	}
}

func TestGrants(t *testing.T) {
	t.Parallel()
	granted := make(grants)
	assert.Nil(t, granted.Set("secret=ada"))
	assert.Equal(t, granted, grants{"secret": "ada"})
	assert.Equal(t, granted.String(), "secret=ada")
}
