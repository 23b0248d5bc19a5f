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
	"strings"
	"testing"

	"verdad.dev/verdad"
	"verdad.dev/verdad/internal/assert"
)

func TestLoadServers(t *testing.T) {
	t.Parallel()
	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		servers, err := verdad.LoadServers(strings.NewReader(`
servers:
  prod: https://api.example.com
  local: http://localhost:8080/
`))
		assert.Nil(t, err)
		assert.Equal(t, servers, verdad.Servers{
			"prod":  "https://api.example.com",
			"local": "http://localhost:8080/",
		})
	})
	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		servers, err := verdad.LoadServers(strings.NewReader(""))
		assert.Nil(t, err)
		assert.Equal(t, servers, verdad.Servers{})
	})
	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := verdad.LoadServers(strings.NewReader("hosts:\n  prod: https://api.example.com\n"))
		assert.NotNil(t, err)
	})
	t.Run("relative url", func(t *testing.T) {
		t.Parallel()
		_, err := verdad.LoadServers(strings.NewReader("servers:\n  prod: /api\n"))
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
	})
	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := verdad.LoadServers(strings.NewReader("servers:\n  prod: ftp://files.example.com\n"))
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
	})
}

func TestResource(t *testing.T) {
	t.Parallel()
	get, post := newListItems(t), newAddItem(t)
	resource, err := verdad.NewResource(post, get)
	assert.Nil(t, err)
	assert.Equal(t, resource.Path().String(), "/lists/{listID}/items")
	methods := resource.Methods()
	assert.Len(t, methods, 2)
	assert.Equal(t, methods[0].Verb(), verdad.VerbGet)
	assert.Equal(t, methods[1].Verb(), verdad.VerbPost)
	method, ok := resource.Method(verdad.VerbPost)
	assert.True(t, ok)
	assert.Equal(t, method.String(), "POST /lists/{listID}/items")
	_, ok = resource.Method(verdad.VerbDelete)
	assert.False(t, ok)

	_, err = verdad.NewResource()
	assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
	_, err = verdad.NewResource(get, get)
	assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
	other := verdad.MustMethod(verdad.VerbDelete, verdad.MustPath(verdad.Lit("lists"), verdad.Param("listID")), verdad.Definition[listPath, struct{}, itemsHeaders, struct{}, struct{}, problem]{
		PathParameters:   listPathCodec,
		QueryParameters:  noQueryCodec,
		HeaderParameters: itemsHeadersCodec,
		RequestBody:      verdad.Null(),
		Success:          verdad.Responses[struct{}]{StatusCodes: []int{204}, Body: verdad.Null()},
		Error:            verdad.Responses[problem]{StatusCodes: []int{404}, Body: problemCodec},
	})
	_, err = verdad.NewResource(get, other)
	assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
	assert.Panics(t, func() { verdad.MustResource() })
}

func TestAPI(t *testing.T) {
	t.Parallel()
	get, post := newListItems(t), newAddItem(t)
	servers := verdad.Servers{"prod": "https://api.example.com/", "test": "http://test.example.com"}
	api, err := verdad.NewAPI("lists", servers, map[string]*verdad.Resource{
		"items":  verdad.MustResource(post),
		"browse": verdad.MustResource(get),
	})
	assert.Nil(t, err)
	assert.Equal(t, api.Name(), "lists")

	t.Run("for each method", func(t *testing.T) {
		t.Parallel()
		var visited []string
		api.ForEachMethod(func(key string, method verdad.AnyMethod) {
			visited = append(visited, key+": "+method.String())
		})
		assert.Equal(t, visited, []string{
			"browse: GET /lists/{listID}/items",
			"items: POST /lists/{listID}/items",
		})
	})
	t.Run("servers", func(t *testing.T) {
		t.Parallel()
		base, err := api.ServerURL("prod")
		assert.Nil(t, err)
		assert.Equal(t, base, "https://api.example.com")
		_, err = api.ServerURL("staging")
		assert.ErrorIs(t, err, verdad.ErrUnknownServer)
		copied := api.Servers()
		copied["prod"] = "https://evil.example.com"
		assert.Equal(t, api.Servers()["prod"], "https://api.example.com/")
	})
	t.Run("resources", func(t *testing.T) {
		t.Parallel()
		resource, ok := api.Resource("items")
		assert.True(t, ok)
		assert.Len(t, resource.Methods(), 1)
		_, ok = api.Resource("albums")
		assert.False(t, ok)
	})
	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := verdad.NewAPI("", servers, nil)
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
		_, err = verdad.NewAPI("dup", servers, map[string]*verdad.Resource{
			"a": verdad.MustResource(get),
			"b": verdad.MustResource(get),
		})
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
		renamed := verdad.MustMethod(verdad.VerbGet, verdad.MustPath(verdad.Lit("lists"), verdad.Param("id"), verdad.Lit("items")), verdad.Definition[map[string]string, itemsQuery, itemsHeaders, struct{}, itemsBody, problem]{
			PathParameters:   verdad.Record(verdad.String()),
			QueryParameters:  itemsQueryCodec,
			HeaderParameters: itemsHeadersCodec,
			RequestBody:      verdad.Null(),
			Success:          verdad.Responses[itemsBody]{StatusCodes: []int{200}, Body: itemsBodyCodec},
			Error:            verdad.Responses[problem]{StatusCodes: []int{404}, Body: problemCodec},
		})
		_, err = verdad.NewAPI("same route", servers, map[string]*verdad.Resource{
			"a": verdad.MustResource(get),
			"b": verdad.MustResource(renamed),
		})
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
		_, err = verdad.NewAPI("nil", servers, map[string]*verdad.Resource{"a": nil})
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
		_, err = verdad.NewAPI("bad server", verdad.Servers{"x": "not a url"}, nil)
		assert.ErrorIs(t, err, verdad.ErrInvalidAPI)
		assert.Panics(t, func() { verdad.MustAPI("", nil, nil) })
	})
}
