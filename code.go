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
	"net/http"
)

// A FaultKind is the reason a Handler couldn't produce a response from the
// method's implementation. Every FaultKind is turned into an error response
// by the handler's ErrorClassifier.
type FaultKind uint8

const (
	FaultNonJSONRequestBody     FaultKind = 1 // request body isn't JSON
	FaultInvalidRequestSchema   FaultKind = 2 // request doesn't satisfy the method's codecs
	FaultUnexpectedRuntimeError FaultKind = 3 // implementation failed, details are kept server-side

	minFaultKind = FaultNonJSONRequestBody
	maxFaultKind = FaultUnexpectedRuntimeError
)

func (k FaultKind) String() string {
	switch k {
	case FaultNonJSONRequestBody:
		return "non_json_request_body"
	case FaultInvalidRequestSchema:
		return "invalid_request_schema"
	case FaultUnexpectedRuntimeError:
		return "unexpected_runtime_error"
	}
	return fmt.Sprintf("fault_%d", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k FaultKind) MarshalText() ([]byte, error) {
	if k < minFaultKind || k > maxFaultKind {
		return nil, fmt.Errorf("invalid fault kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FaultKind) UnmarshalText(data []byte) error {
	for candidate := minFaultKind; candidate <= maxFaultKind; candidate++ {
		if candidate.String() == string(data) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid fault kind %q", string(data))
}

// HTTPStatus is the conventional status code for the fault: 400 for faults
// caused by the caller, 500 otherwise. Error classifiers may use it when the
// method's error responses follow the convention.
func (k FaultKind) HTTPStatus() int {
	switch k {
	case FaultNonJSONRequestBody, FaultInvalidRequestSchema:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// A FailureKind classifies a failed client call. See CallError.
type FailureKind uint8

const (
	FailureRequestNotMade       FailureKind = 1 // nothing was sent
	FailureNoResponse           FailureKind = 2 // sent, but nothing came back
	FailureUnexpectedStatusCode FailureKind = 3 // status code in neither declared set
	FailureUndecodableSuccess   FailureKind = 4 // success status, body doesn't fit the success codec
	FailureUndecodableError     FailureKind = 5 // error status, body doesn't fit the error codec
	FailureErrorResponse        FailureKind = 6 // declared error response, decoded

	minFailureKind = FailureRequestNotMade
	maxFailureKind = FailureErrorResponse
)

func (k FailureKind) String() string {
	switch k {
	case FailureRequestNotMade:
		return "request_could_not_be_made"
	case FailureNoResponse:
		return "no_response_received"
	case FailureUnexpectedStatusCode:
		return "unexpected_status_code"
	case FailureUndecodableSuccess:
		return "could_not_decode_success_response"
	case FailureUndecodableError:
		return "could_not_decode_error_response"
	case FailureErrorResponse:
		return "error_response_returned"
	}
	return fmt.Sprintf("failure_%d", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k FailureKind) MarshalText() ([]byte, error) {
	if k < minFailureKind || k > maxFailureKind {
		return nil, fmt.Errorf("invalid failure kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FailureKind) UnmarshalText(data []byte) error {
	for candidate := minFailureKind; candidate <= maxFailureKind; candidate++ {
		if candidate.String() == string(data) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid failure kind %q", string(data))
}

// IsTransport reports whether the failure happened before any response was
// classified.
func (k FailureKind) IsTransport() bool {
	return k == FailureRequestNotMade || k == FailureNoResponse
}

// Side says which of a method's two response sets a status code belongs to,
// or would belong to if it were declared.
type Side uint8

const (
	SideSuccess Side = 1
	SideError   Side = 2
)

func (s Side) String() string {
	switch s {
	case SideSuccess:
		return "success"
	case SideError:
		return "error"
	}
	return "unknown"
}

// sideOf infers the side of an undeclared status code from its class.
func sideOf(statusCode int) Side {
	if statusCode >= 200 && statusCode < 300 {
		return SideSuccess
	}
	return SideError
}
