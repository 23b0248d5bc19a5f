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
	"net/http"
	"testing"
	"testing/quick"

	"verdad.dev/verdad/internal/assert"
)

func TestFault(t *testing.T) {
	t.Parallel()
	syntaxErr := errors.New("invalid character 'x'")
	fault := &Fault{Kind: FaultNonJSONRequestBody, Err: syntaxErr}
	assert.Equal(t, fault.Error(), "non_json_request_body: invalid character 'x'")
	assert.ErrorIs(t, fault, syntaxErr)
	assert.Nil(t, fault.DecodeErrors())

	leaves := Errors{{Context: rootContext("string"), Value: 1.0}}
	schemaFault := &Fault{Kind: FaultInvalidRequestSchema, Err: &DecodeError{Codec: "string", Errors: leaves}}
	assert.Len(t, schemaFault.DecodeErrors(), 1)

	runtimeFault := &Fault{Kind: FaultUnexpectedRuntimeError}
	assert.Equal(t, runtimeFault.Error(), "unexpected_runtime_error")
	assert.Nil(t, runtimeFault.Unwrap())
}

func TestCallError(t *testing.T) {
	t.Parallel()
	cause := errors.New("dial tcp: connection refused")
	tests := []struct {
		err  *CallError[string]
		want string
	}{
		{&CallError[string]{Kind: FailureRequestNotMade}, "request_could_not_be_made"},
		{&CallError[string]{Kind: FailureNoResponse, err: cause}, "no_response_received: dial tcp: connection refused"},
		{&CallError[string]{Kind: FailureUnexpectedStatusCode, StatusCode: 503, Side: SideError}, "unexpected_status_code: 503 (error side)"},
		{
			&CallError[string]{
				Kind:         FailureUndecodableSuccess,
				StatusCode:   200,
				DecodeErrors: Errors{{Context: rootContext("Body"), Value: nil}},
			},
			"could_not_decode_success_response: status 200: <root>: invalid value null supplied, expected Body",
		},
		{&CallError[string]{Kind: FailureErrorResponse, StatusCode: http.StatusNotFound}, "error_response_returned: status 404"},
	}
	for _, testcase := range tests {
		assert.Equal(t, testcase.err.Error(), testcase.want)
	}

	wrapped := fmt.Errorf("list items: %w", &CallError[string]{Kind: FailureNoResponse, err: cause})
	kind, ok := FailureKindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, kind, FailureNoResponse)
	assert.ErrorIs(t, wrapped, cause)

	_, ok = FailureKindOf(cause)
	assert.False(t, ok)
	_, ok = FailureKindOf(nil)
	assert.False(t, ok)
}

func TestClassifyUndeclaredStatusCodes(t *testing.T) {
	t.Parallel()
	method := MustMethod(VerbGet, MustPath(Lit("items")), Definition[struct{}, struct{}, struct{}, struct{}, []string, string]{
		PathParameters:   Object[struct{}]("NoPath"),
		QueryParameters:  Object[struct{}]("NoQuery"),
		HeaderParameters: Object[struct{}]("NoHeaders"),
		RequestBody:      Null(),
		Success:          Responses[[]string]{StatusCodes: []int{http.StatusOK, http.StatusCreated}, Body: Array(String())},
		Error:            Responses[string]{StatusCodes: []int{http.StatusBadRequest, http.StatusNotFound}, Body: String()},
	})
	declared := map[int]bool{
		http.StatusOK:         true,
		http.StatusCreated:    true,
		http.StatusBadRequest: true,
		http.StatusNotFound:   true,
	}
	// The body never matters for an undeclared status.
	bodies := []string{`[]`, `"oops"`, ``, `not json`}
	for code := 100; code <= 599; code++ {
		if declared[code] {
			continue
		}
		for _, raw := range bodies {
			response, err := classify(method, nil, code, nil, []byte(raw))
			assert.Nil(t, response)
			var callErr *CallError[string]
			assert.True(t, errors.As(err, &callErr), assert.Sprintf("status %d", code))
			assert.Equal(t, callErr.Kind, FailureUnexpectedStatusCode, assert.Sprintf("status %d", code))
			assert.Equal(t, callErr.Side, sideOf(code))
			assert.Nil(t, callErr.ErrorResponse)
			assert.Len(t, callErr.DecodeErrors, 0)
		}
	}
	declaredOnly := func(code uint16) bool {
		status := 100 + int(code)%500
		_, err := classify(method, nil, status, nil, []byte(`[]`))
		kind, _ := FailureKindOf(err)
		return declared[status] == (kind != FailureUnexpectedStatusCode)
	}
	if err := quick.Check(declaredOnly, nil); err != nil {
		t.Error(err)
	}
}
