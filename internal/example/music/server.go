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

package music

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"verdad.dev/verdad"
)

// PageSize is the number of playlists per page.
const PageSize = 20

// HiddenDetails replaces the details of internal faults.
const HiddenDetails = "Details hidden for security"

type getPlaylistsRequest = verdad.Request[PathParameters, QueryParameters, HeaderParameters, struct{}]

// Implement returns the implementation of GetPlaylists backed by store.
func Implement(store *Store) verdad.Implementation[PathParameters, QueryParameters, HeaderParameters, struct{}, []Playlist, ErrorBody] {
	return func(_ context.Context, request *getPlaylistsRequest) (verdad.Outcome[[]Playlist, ErrorBody], error) {
		page := 1
		if number := request.QueryParameters.PageNumber; number != nil {
			if *number < 1 || *number != math.Trunc(*number) || *number > math.MaxInt32 {
				return GetPlaylists.Fail(http.StatusBadRequest, ErrorBody{
					ErrorDetails: "pageNumber must be a positive integer",
				}), nil
			}
			page = int(*number)
		}
		playlists, err := store.Page(
			request.HeaderParameters.AuthorizationToken,
			request.PathParameters.UserID,
			page,
			PageSize,
		)
		switch {
		case errors.Is(err, errUnknownToken), errors.Is(err, errForbidden):
			return GetPlaylists.Fail(http.StatusUnauthorized, ErrorBody{ErrorDetails: err.Error()}), nil
		case err != nil:
			return verdad.Outcome[[]Playlist, ErrorBody]{}, err
		}
		return GetPlaylists.Succeed(http.StatusOK, playlists), nil
	}
}

// Classify answers caller faults with 400 and the validation details, and
// internal faults with a 500 that reveals nothing.
func Classify(fault *verdad.Fault) verdad.Response[ErrorBody] {
	switch fault.Kind {
	case verdad.FaultNonJSONRequestBody:
		return verdad.Response[ErrorBody]{
			StatusCode: http.StatusBadRequest,
			Body:       ErrorBody{ErrorDetails: fault.Err.Error()},
		}
	case verdad.FaultInvalidRequestSchema:
		return verdad.Response[ErrorBody]{
			StatusCode: http.StatusBadRequest,
			Body:       ErrorBody{ErrorDetails: describeErrors(fault.DecodeErrors())},
		}
	default:
		return verdad.Response[ErrorBody]{
			StatusCode: http.StatusInternalServerError,
			Body:       ErrorBody{ErrorDetails: HiddenDetails},
		}
	}
}

// describeErrors renders validation failures as a JSON array of
// {"path", "message"} objects.
func describeErrors(errs verdad.Errors) string {
	type leaf struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	}
	leaves := make([]leaf, len(errs))
	for i, err := range errs {
		leaves[i] = leaf{Path: err.Context.Path(), Message: err.Error()}
	}
	data, err := json.Marshal(leaves)
	if err != nil {
		return errs.Error()
	}
	return string(data)
}

// NewHandlers returns the handlers of every method of the music API.
func NewHandlers(store *Store, options ...verdad.HandlerOption) []*verdad.Handler {
	return []*verdad.Handler{
		GetPlaylists.Handler(Implement(store), Classify, options...),
	}
}
