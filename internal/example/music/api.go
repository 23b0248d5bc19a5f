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

// Package music is a small playlist API used to exercise verdad end to end.
// It declares the contract, an in-memory implementation, and the client-side
// handling of every failure kind.
package music

import (
	"bytes"
	_ "embed"
	"net/http"

	"verdad.dev/verdad"
)

//go:embed servers.yaml
var serversYAML []byte

// PlaylistsKey is the resource key of the playlists resource.
const PlaylistsKey = "playlists"

type PathParameters struct {
	UserID string
}

type QueryParameters struct {
	// PageNumber is 1-based. Nil means the first page.
	PageNumber *float64
}

type HeaderParameters struct {
	AuthorizationToken string
}

// A Playlist is one user's named list of tracks.
type Playlist struct {
	ID     string
	Name   string
	Tracks []string
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	ErrorDetails string
}

var (
	playlistCodec = verdad.Object("Playlist",
		verdad.Required("id", verdad.String(), func(p *Playlist) *string { return &p.ID }),
		verdad.Required("name", verdad.String(), func(p *Playlist) *string { return &p.Name }),
		verdad.Required("tracks", verdad.Array(verdad.String()), func(p *Playlist) *[]string { return &p.Tracks }),
	)
	errorBodyCodec = verdad.Object("ErrorBody",
		verdad.Required("errorDetails", verdad.String(), func(e *ErrorBody) *string { return &e.ErrorDetails }),
	)
)

// GetPlaylists lists a user's playlists, one page at a time.
var GetPlaylists = verdad.MustMethod(
	verdad.VerbGet,
	verdad.MustPath(verdad.Lit("users"), verdad.Param("userID"), verdad.Lit("playlists")),
	verdad.Definition[PathParameters, QueryParameters, HeaderParameters, struct{}, []Playlist, ErrorBody]{
		PathParameters: verdad.Object("PathParameters",
			verdad.Required("userID", verdad.String(), func(p *PathParameters) *string { return &p.UserID }),
		),
		QueryParameters: verdad.Strict[QueryParameters](verdad.Object("QueryParameters",
			verdad.Optional("pageNumber", verdad.NumberFromString(), func(q *QueryParameters) **float64 { return &q.PageNumber }),
		)),
		HeaderParameters: verdad.CaseInsensitive(verdad.Object("HeaderParameters",
			verdad.Required("authorization-token", verdad.String(), func(h *HeaderParameters) *string { return &h.AuthorizationToken }),
		)),
		RequestBody: verdad.Null(),
		Success: verdad.Responses[[]Playlist]{
			StatusCodes: []int{http.StatusOK},
			Body:        verdad.Array[Playlist](playlistCodec),
		},
		Error: verdad.Responses[ErrorBody]{
			StatusCodes: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError},
			Body:        errorBodyCodec,
		},
	},
)

// Servers returns the catalog of deployed servers.
func Servers() (verdad.Servers, error) {
	return verdad.LoadServers(bytes.NewReader(serversYAML))
}

// NewAPI describes the music API as hosted on servers. Passing nil uses the
// deployed catalog.
func NewAPI(servers verdad.Servers) (*verdad.API, error) {
	if servers == nil {
		var err error
		if servers, err = Servers(); err != nil {
			return nil, err
		}
	}
	return verdad.NewAPI("music", servers, map[string]*verdad.Resource{
		PlaylistsKey: verdad.MustResource(GetPlaylists),
	})
}
