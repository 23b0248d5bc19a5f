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
	"net/http"
	"strings"
	"testing"

	"verdad.dev/verdad/internal/assert"
)

type textEnum interface {
	fmt.Stringer
	MarshalText() ([]byte, error)
}

func TestFaultKind(t *testing.T) {
	t.Parallel()
	valid := []FaultKind{FaultNonJSONRequestBody, FaultInvalidRequestSchema, FaultUnexpectedRuntimeError}
	t.Run("round-trip", func(t *testing.T) {
		t.Parallel()
		for _, kind := range valid {
			text, err := kind.MarshalText()
			assert.Nil(t, err, assert.Sprintf("marshal %v", kind))
			var in FaultKind
			assert.Nil(t, in.UnmarshalText(text))
			assert.Equal(t, in, kind)
		}
	})
	t.Run("names", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, names(valid), []string{"non_json_request_body", "invalid_request_schema", "unexpected_runtime_error"})
	})
	t.Run("out of bounds", func(t *testing.T) {
		t.Parallel()
		_, err := (maxFaultKind + 1).MarshalText()
		assert.NotNil(t, err)
		_ = FaultKind(0).String()
		var kind FaultKind
		assert.NotNil(t, kind.UnmarshalText([]byte("fault_9")))
	})
	t.Run("status", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, FaultNonJSONRequestBody.HTTPStatus(), http.StatusBadRequest)
		assert.Equal(t, FaultInvalidRequestSchema.HTTPStatus(), http.StatusBadRequest)
		assert.Equal(t, FaultUnexpectedRuntimeError.HTTPStatus(), http.StatusInternalServerError)
	})
	t.Run("json", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(map[string]FaultKind{"kind": FaultInvalidRequestSchema})
		assert.Nil(t, err)
		assert.Equal(t, string(data), `{"kind":"invalid_request_schema"}`)
	})
}

func TestFailureKind(t *testing.T) {
	t.Parallel()
	valid := []FailureKind{
		FailureRequestNotMade,
		FailureNoResponse,
		FailureUnexpectedStatusCode,
		FailureUndecodableSuccess,
		FailureUndecodableError,
		FailureErrorResponse,
	}
	t.Run("round-trip", func(t *testing.T) {
		t.Parallel()
		for _, kind := range valid {
			text, err := kind.MarshalText()
			assert.Nil(t, err, assert.Sprintf("marshal %v", kind))
			var in FailureKind
			assert.Nil(t, in.UnmarshalText(text))
			assert.Equal(t, in, kind)
			assert.False(t, strings.Contains(kind.String(), "failure_"))
		}
	})
	t.Run("out of bounds", func(t *testing.T) {
		t.Parallel()
		_, err := (maxFailureKind + 1).MarshalText()
		assert.NotNil(t, err)
		var kind FailureKind
		assert.NotNil(t, kind.UnmarshalText([]byte("REQUEST_COULD_NOT_BE_MADE")))
	})
	t.Run("transport", func(t *testing.T) {
		t.Parallel()
		for _, kind := range valid {
			want := kind == FailureRequestNotMade || kind == FailureNoResponse
			assert.Equal(t, kind.IsTransport(), want, assert.Sprintf("%v", kind))
		}
	})
}

func TestVerb(t *testing.T) {
	t.Parallel()
	for _, verb := range verbs {
		text, err := verb.MarshalText()
		assert.Nil(t, err)
		var in Verb
		assert.Nil(t, in.UnmarshalText([]byte(strings.ToLower(string(text)))))
		assert.Equal(t, in, verb)
	}
	assert.Equal(t, names(verbs[:]), []string{"GET", "POST", "PUT", "PATCH", "DELETE"})
	_, err := Verb(0).MarshalText()
	assert.NotNil(t, err)
	var verb Verb
	assert.NotNil(t, verb.UnmarshalText([]byte("OPTIONS")))
}

func TestSide(t *testing.T) {
	t.Parallel()
	assert.Equal(t, sideOf(http.StatusNoContent), SideSuccess)
	assert.Equal(t, sideOf(http.StatusFound), SideError)
	assert.Equal(t, sideOf(http.StatusServiceUnavailable), SideError)
	assert.Equal(t, SideSuccess.String(), "success")
	assert.Equal(t, Side(0).String(), "unknown")
}

func names[T textEnum](values []T) []string {
	result := make([]string, len(values))
	for i, value := range values {
		result[i] = value.String()
	}
	return result
}
