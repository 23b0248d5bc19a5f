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
)

var (
	// ErrOverlappingStatusCodes is returned by NewMethod when a status code is
	// declared as both a success and an error.
	ErrOverlappingStatusCodes = errors.New("success and error status codes overlap")
	// ErrInvalidMethod wraps every other reason NewMethod rejects a definition.
	ErrInvalidMethod = errors.New("invalid method definition")
	ErrInvalidPath   = errors.New("invalid path")
	// ErrUnrenderablePath is returned when encoded path parameters can't fill
	// a path's template.
	ErrUnrenderablePath = errors.New("path can't be rendered")
	ErrInvalidAPI       = errors.New("invalid API definition")
	ErrUnknownServer    = errors.New("unknown server")
)

// A Fault describes why a Handler is answering with an error response that
// the method's implementation didn't produce. It's passed to the handler's
// ErrorClassifier.
type Fault struct {
	Kind FaultKind
	// Err is the cause of caller faults: the JSON syntax error for
	// FaultNonJSONRequestBody, or a *DecodeError for FaultInvalidRequestSchema.
	// It's nil for FaultUnexpectedRuntimeError, whose details are logged and
	// never leave the server.
	Err error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Err.Error()
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// DecodeErrors returns the validation failures of a FaultInvalidRequestSchema.
// It returns nil for other kinds.
func (f *Fault) DecodeErrors() Errors {
	var decodeErr *DecodeError
	if errors.As(f.Err, &decodeErr) {
		return decodeErr.Errors
	}
	return nil
}

// A CallError is returned by Do for every outcome other than a decoded
// success response. Its fields carry whatever the client learned before
// giving up, so that callers can log or inspect the exchange.
//
// Use errors.As to retrieve a CallError, or FailureKindOf to classify any
// error returned by Do.
type CallError[E any] struct {
	Kind FailureKind
	// StatusCode is zero for transport failures.
	StatusCode int
	// Side is the response set the status code belongs to. For
	// FailureUnexpectedStatusCode it's inferred from the status class.
	Side   Side
	Body   []byte
	Header http.Header
	// Request is the request that was sent, or nil if none could be built.
	Request      *http.Request
	DecodeErrors Errors
	// ErrorResponse holds the decoded body of a FailureErrorResponse.
	ErrorResponse *Response[E]

	err error
}

func (e *CallError[E]) Error() string {
	switch e.Kind {
	case FailureRequestNotMade, FailureNoResponse:
		if e.err != nil {
			return fmt.Sprintf("%v: %v", e.Kind, e.err)
		}
		return e.Kind.String()
	case FailureUnexpectedStatusCode:
		return fmt.Sprintf("%v: %d (%v side)", e.Kind, e.StatusCode, e.Side)
	case FailureUndecodableSuccess, FailureUndecodableError:
		return fmt.Sprintf("%v: status %d: %v", e.Kind, e.StatusCode, e.DecodeErrors)
	default:
		return fmt.Sprintf("%v: status %d", e.Kind, e.StatusCode)
	}
}

// Unwrap returns the transport error behind FailureRequestNotMade and
// FailureNoResponse, or nil.
func (e *CallError[E]) Unwrap() error {
	return e.err
}

// FailureKind returns e.Kind. It lets callers classify a CallError without
// knowing its type parameter.
func (e *CallError[E]) FailureKind() FailureKind {
	return e.Kind
}

// FailureKindOf returns the kind of the CallError in err's chain, and false if
// there isn't one.
func FailureKindOf(err error) (FailureKind, bool) {
	var callErr interface{ FailureKind() FailureKind }
	if errors.As(err, &callErr) {
		return callErr.FailureKind(), true
	}
	return 0, false
}
