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
	"io"
	"net/url"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Servers maps server names, like "production", to base URLs.
type Servers map[string]string

// LoadServers reads a server catalog in YAML:
//
//	servers:
//	  production: https://api.example.com
//	  staging: https://staging.api.example.com
//
// Every URL must be an absolute http or https URL.
func LoadServers(r io.Reader) (Servers, error) {
	var catalog struct {
		Servers Servers `yaml:"servers"`
	}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read server catalog: %w", err)
	}
	if err := catalog.Servers.validate(); err != nil {
		return nil, err
	}
	if catalog.Servers == nil {
		return Servers{}, nil
	}
	return catalog.Servers, nil
}

func (s Servers) validate() error {
	for name, base := range s {
		parsed, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("%w: server %q: %v", ErrInvalidAPI, name, err)
		}
		if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: server %q: %q isn't an absolute http or https URL", ErrInvalidAPI, name, base)
		}
	}
	return nil
}

// A Resource groups the methods that share one path, at most one per verb.
type Resource struct {
	path    Path
	methods map[Verb]AnyMethod
}

// NewResource groups methods into a resource. It fails if no methods are
// given, two methods use the same verb, or the methods' paths differ.
func NewResource(methods ...AnyMethod) (*Resource, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: resource has no methods", ErrInvalidAPI)
	}
	resource := &Resource{methods: make(map[Verb]AnyMethod, len(methods))}
	for i, method := range methods {
		if method == nil {
			return nil, fmt.Errorf("%w: nil method", ErrInvalidAPI)
		}
		if i == 0 {
			resource.path = method.Path()
		}
		if got, want := method.Path().String(), resource.path.String(); got != want {
			return nil, fmt.Errorf("%w: %s doesn't share the resource path %s", ErrInvalidAPI, method, want)
		}
		if _, ok := resource.methods[method.Verb()]; ok {
			return nil, fmt.Errorf("%w: %s declared twice", ErrInvalidAPI, method)
		}
		resource.methods[method.Verb()] = method
	}
	return resource, nil
}

// MustResource is like NewResource, but panics on error.
func MustResource(methods ...AnyMethod) *Resource {
	resource, err := NewResource(methods...)
	if err != nil {
		panic(err)
	}
	return resource
}

// Path returns the path all of the resource's methods share.
func (r *Resource) Path() Path { return r.path }

// Method returns the resource's method for verb, if it has one.
func (r *Resource) Method(verb Verb) (AnyMethod, bool) {
	method, ok := r.methods[verb]
	return method, ok
}

// Methods returns the resource's methods in GET, POST, PUT, PATCH, DELETE
// order.
func (r *Resource) Methods() []AnyMethod {
	methods := make([]AnyMethod, 0, len(r.methods))
	for _, verb := range verbs {
		if method, ok := r.methods[verb]; ok {
			methods = append(methods, method)
		}
	}
	return methods
}

// An API is a named set of resources and the servers that host them.
type API struct {
	name      string
	servers   Servers
	keys      []string
	resources map[string]*Resource
}

// NewAPI validates and builds an API. Resource keys name resources for
// documentation and traversal; they don't appear in URLs. Two resources may
// not declare the same verb on the same path.
func NewAPI(name string, servers Servers, resources map[string]*Resource) (*API, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidAPI)
	}
	if err := servers.validate(); err != nil {
		return nil, err
	}
	api := &API{
		name:      name,
		servers:   make(Servers, len(servers)),
		keys:      make([]string, 0, len(resources)),
		resources: make(map[string]*Resource, len(resources)),
	}
	for serverName, base := range servers {
		api.servers[serverName] = base
	}
	routes := make(map[string]string)
	for key, resource := range resources {
		if resource == nil {
			return nil, fmt.Errorf("%w: resource %q is nil", ErrInvalidAPI, key)
		}
		for _, method := range resource.Methods() {
			route := method.Verb().String() + " " + method.Path().pattern()
			if other, ok := routes[route]; ok {
				return nil, fmt.Errorf("%w: %s conflicts with a route of resource %q", ErrInvalidAPI, method, other)
			}
			routes[route] = key
		}
		api.keys = append(api.keys, key)
		api.resources[key] = resource
	}
	sort.Strings(api.keys)
	return api, nil
}

// MustAPI is like NewAPI, but panics on error.
func MustAPI(name string, servers Servers, resources map[string]*Resource) *API {
	api, err := NewAPI(name, servers, resources)
	if err != nil {
		panic(err)
	}
	return api
}

// Name returns the API's name.
func (a *API) Name() string { return a.name }

// Servers returns a copy of the API's server catalog.
func (a *API) Servers() Servers {
	servers := make(Servers, len(a.servers))
	for name, base := range a.servers {
		servers[name] = base
	}
	return servers
}

// ServerURL returns the base URL of the named server, without a trailing
// slash. It fails with ErrUnknownServer for names not in the catalog.
func (a *API) ServerURL(name string) (string, error) {
	base, ok := a.servers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q in API %s", ErrUnknownServer, name, a.name)
	}
	return strings.TrimSuffix(base, "/"), nil
}

// Resource returns the resource stored under key.
func (a *API) Resource(key string) (*Resource, bool) {
	resource, ok := a.resources[key]
	return resource, ok
}

// ForEachMethod calls fn with every method of the API, visiting resources in
// key order and each resource's methods in GET, POST, PUT, PATCH, DELETE
// order.
func (a *API) ForEachMethod(fn func(key string, method AnyMethod)) {
	for _, key := range a.keys {
		for _, method := range a.resources[key].Methods() {
			fn(key, method)
		}
	}
}
