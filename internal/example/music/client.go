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
	"errors"
	"fmt"

	"verdad.dev/verdad"
)

// FetchPlaylists calls GetPlaylists. A nil page fetches the first page.
func FetchPlaylists(ctx context.Context, client *verdad.Client, userID, token string, page *float64) ([]Playlist, error) {
	response, err := GetPlaylists.Do(ctx, client, &verdad.Call[PathParameters, QueryParameters, HeaderParameters, struct{}]{
		PathParameters:   PathParameters{UserID: userID},
		QueryParameters:  QueryParameters{PageNumber: page},
		HeaderParameters: HeaderParameters{AuthorizationToken: token},
	})
	if err != nil {
		return nil, err
	}
	return response.Body, nil
}

// Explain turns an error from FetchPlaylists into a message for end users.
func Explain(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "Request canceled."
	}
	var callErr *verdad.CallError[ErrorBody]
	if !errors.As(err, &callErr) {
		return "Something went wrong."
	}
	switch callErr.Kind {
	case verdad.FailureErrorResponse:
		return fmt.Sprintf("Error %d: %s", callErr.StatusCode, callErr.ErrorResponse.Body.ErrorDetails)
	case verdad.FailureUndecodableError, verdad.FailureUndecodableSuccess, verdad.FailureUnexpectedStatusCode:
		return fmt.Sprintf("Unexpected response from server (status %d).", callErr.StatusCode)
	case verdad.FailureNoResponse, verdad.FailureRequestNotMade:
		return "Check your Internet connection and try again."
	default:
		return "Something went wrong."
	}
}
