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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// InvocationIDHeader carries the ID a Handler assigns to each request. The
// same ID is attached to every log record about the request, so that a
// caller holding a generic error response can be matched with the
// server-side details.
const InvocationIDHeader = "Verdad-Invocation-Id"

// A Request is the decoded input passed to an Implementation.
type Request[P, Q, H, B any] struct {
	Call[P, Q, H, B]

	// Stage is the deployment stage the handler was configured with, or the
	// stage named by the RawRequest.
	Stage        string
	InvocationID string
}

// An Implementation is the server-side logic of a method. It returns an
// Outcome built with Method.Succeed or Method.Fail.
//
// Returning a non-nil error, or panicking, answers the caller with the
// classifier's response for FaultUnexpectedRuntimeError. The error itself is
// logged and never sent to the caller.
type Implementation[P, Q, H, B, S, E any] func(context.Context, *Request[P, Q, H, B]) (Outcome[S, E], error)

// An ErrorClassifier maps each Fault to one of the method's error responses.
// It must not block. If it panics, the caller receives a bare 500 with an
// empty body.
type ErrorClassifier[E any] func(*Fault) Response[E]

// A RawRequest is the transport-neutral form of an inbound request. Nil maps
// are treated as empty.
type RawRequest struct {
	// Body is the unparsed request body. A nil or empty body is decoded as
	// JSON null.
	Body            []byte
	PathParameters  map[string]string
	QueryParameters map[string]string
	Headers         map[string]string
	// Stage overrides the stage configured with WithStage, if set.
	Stage string
}

// A RawResponse is the transport-neutral form of an outbound response. An
// empty Body means the encoded body was null.
type RawResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// A Handler serves one Method. It implements http.Handler, and its Dispatch
// method can be called directly by other transports.
//
// Handlers never panic and never send implementation errors to callers:
// every request gets a status code and body, either from the implementation
// or from the handler's ErrorClassifier.
type Handler struct {
	method     AnyMethod
	config     *handlerConfig
	dispatcher dispatcher
}

// dispatcher hides the type parameters of a method from Handler.
type dispatcher interface {
	dispatch(ctx context.Context, raw *RawRequest, invocationID string, readErr error) *RawResponse
}

// NewHandler builds a Handler for method from its implementation and an
// ErrorClassifier.
func NewHandler[P, Q, H, B, S, E any](
	method *Method[P, Q, H, B, S, E],
	implementation Implementation[P, Q, H, B, S, E],
	classify ErrorClassifier[E],
	options ...HandlerOption,
) *Handler {
	config := newHandlerConfig(options)
	return &Handler{
		method: method,
		config: config,
		dispatcher: &methodDispatcher[P, Q, H, B, S, E]{
			method:         method,
			implementation: implementation,
			classify:       classify,
			config:         config,
		},
	}
}

// Method returns the method the handler serves.
func (h *Handler) Method() AnyMethod { return h.method }

// Dispatch runs one request through the handler: parse the body, decode the
// call, invoke the implementation, and encode its outcome. Faults along the
// way are turned into error responses by the classifier.
func (h *Handler) Dispatch(ctx context.Context, raw *RawRequest) *RawResponse {
	if raw == nil {
		raw = &RawRequest{}
	}
	return h.dispatcher.dispatch(ctx, raw, uuid.NewString(), nil)
}

// ServeHTTP implements http.Handler. Path parameters are read from chi's
// route context when the handler is mounted on a chi router, and matched
// against the method's path otherwise. Query parameters use the first value
// of each key, and header names are lower-cased.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	verb := h.method.Verb().String()
	if r.Method != verb {
		w.Header().Set("Allow", verb)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	pathParameters, ok := h.pathParameters(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	body, readErr := readAll(r.Body, h.config.ReadMaxBytes)
	if limitErr := asMaxBytesError("read request body", readErr); limitErr != nil {
		readErr = limitErr
	}
	raw := &RawRequest{
		Body:            body,
		PathParameters:  pathParameters,
		QueryParameters: queryRecord(r.URL.Query()),
		Headers:         headerRecord(r.Header),
	}
	response := h.dispatcher.dispatch(r.Context(), raw, uuid.NewString(), readErr)
	for key, values := range response.Header {
		w.Header()[key] = values
	}
	w.WriteHeader(response.StatusCode)
	_, _ = w.Write(response.Body)
}

func (h *Handler) pathParameters(r *http.Request) (map[string]string, bool) {
	path := h.method.Path()
	names := path.Parameters()
	if routeContext := chi.RouteContext(r.Context()); routeContext != nil && len(names) > 0 {
		parameters := make(map[string]string, len(names))
		for _, name := range names {
			value := routeContext.URLParam(name)
			if value == "" {
				parameters = nil
				break
			}
			// chi matches against RawPath when it's set, and the decoded Path
			// otherwise.
			if r.URL.RawPath != "" {
				unescaped, err := url.PathUnescape(value)
				if err != nil {
					return nil, false
				}
				value = unescaped
			}
			parameters[name] = value
		}
		if parameters != nil {
			return parameters, true
		}
	}
	return path.Match(r.URL.EscapedPath())
}

// Mount registers handlers on a chi router, each under its method's verb and
// path.
func Mount(router chi.Router, handlers ...*Handler) {
	for _, handler := range handlers {
		method := handler.Method()
		router.Method(method.Verb().String(), method.Path().String(), handler)
	}
}

// NewRouter returns a chi router serving handlers.
func NewRouter(handlers ...*Handler) *chi.Mux {
	router := chi.NewRouter()
	Mount(router, handlers...)
	return router
}

type methodDispatcher[P, Q, H, B, S, E any] struct {
	method         *Method[P, Q, H, B, S, E]
	implementation Implementation[P, Q, H, B, S, E]
	classify       ErrorClassifier[E]
	config         *handlerConfig
}

func (d *methodDispatcher[P, Q, H, B, S, E]) dispatch(ctx context.Context, raw *RawRequest, invocationID string, readErr error) (response *RawResponse) {
	logger := d.config.Logger.With(
		slog.String("method", d.method.String()),
		slog.String("invocation_id", invocationID),
	)
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "recovered panic while answering request",
				slog.Bool("privacy_warning", true),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			response = &RawResponse{StatusCode: http.StatusInternalServerError, Header: make(http.Header)}
		}
		response.Header.Set(InvocationIDHeader, invocationID)
	}()
	if readErr != nil {
		return d.fault(ctx, logger, &Fault{Kind: FaultNonJSONRequestBody, Err: readErr})
	}
	body, err := parseBody(raw.Body)
	if err != nil {
		return d.fault(ctx, logger, &Fault{Kind: FaultNonJSONRequestBody, Err: err})
	}
	record := map[string]any{
		"requestBody":      body,
		"pathParameters":   orEmpty(raw.PathParameters),
		"queryParameters":  orEmpty(raw.QueryParameters),
		"headerParameters": orEmpty(raw.Headers),
	}
	call, err := Decode[Call[P, Q, H, B]](d.method.call, record)
	if err != nil {
		return d.fault(ctx, logger, &Fault{Kind: FaultInvalidRequestSchema, Err: err})
	}
	stage := raw.Stage
	if stage == "" {
		stage = d.config.Stage
	}
	outcome, err := d.invoke(ctx, &Request[P, Q, H, B]{
		Call:         call,
		Stage:        stage,
		InvocationID: invocationID,
	})
	if err != nil {
		attrs := []any{slog.Bool("privacy_warning", true), slog.Any("error", err)}
		var panicErr *implementationPanic
		if errors.As(err, &panicErr) {
			attrs = append(attrs, slog.String("stack", string(panicErr.stack)))
		}
		logger.ErrorContext(ctx, "caught unexpected error", attrs...)
		return d.fault(ctx, logger, &Fault{Kind: FaultUnexpectedRuntimeError})
	}
	response, err = d.encodeOutcome(outcome)
	if err != nil {
		logger.ErrorContext(ctx, "implementation returned an unusable outcome", slog.Any("error", err))
		return d.fault(ctx, logger, &Fault{Kind: FaultUnexpectedRuntimeError})
	}
	return response
}

// invoke calls the implementation, converting a panic into an error.
func (d *methodDispatcher[P, Q, H, B, S, E]) invoke(ctx context.Context, request *Request[P, Q, H, B]) (outcome Outcome[S, E], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &implementationPanic{value: r, stack: debug.Stack()}
		}
	}()
	return d.implementation(ctx, request)
}

func (d *methodDispatcher[P, Q, H, B, S, E]) encodeOutcome(outcome Outcome[S, E]) (*RawResponse, error) {
	definition := d.method.definition
	if success, ok := outcome.Success(); ok {
		if !d.method.isSuccess(success.StatusCode) {
			return nil, fmt.Errorf("success status code %d isn't declared", success.StatusCode)
		}
		return encodeResponse(success.StatusCode, definition.Success.Body.Encode(success.Body))
	}
	if failure, ok := outcome.Failure(); ok {
		if !d.method.isError(failure.StatusCode) {
			return nil, fmt.Errorf("error status code %d isn't declared", failure.StatusCode)
		}
		return encodeResponse(failure.StatusCode, definition.Error.Body.Encode(failure.Body))
	}
	return nil, errors.New("outcome holds neither a success nor an error response")
}

func (d *methodDispatcher[P, Q, H, B, S, E]) fault(ctx context.Context, logger *slog.Logger, fault *Fault) *RawResponse {
	logger.DebugContext(ctx, "answering with classified fault", slog.String("fault", fault.Kind.String()))
	classified := d.classify(fault)
	if !d.method.isError(classified.StatusCode) {
		logger.WarnContext(ctx, "classifier returned an undeclared status code",
			slog.String("fault", fault.Kind.String()),
			slog.Int("status", classified.StatusCode),
		)
	}
	response, err := encodeResponse(classified.StatusCode, d.method.definition.Error.Body.Encode(classified.Body))
	if err != nil {
		logger.ErrorContext(ctx, "can't encode classified fault", slog.Any("error", err))
		return &RawResponse{StatusCode: http.StatusInternalServerError, Header: make(http.Header)}
	}
	return response
}

type implementationPanic struct {
	value any
	stack []byte
}

func (p *implementationPanic) Error() string {
	return fmt.Sprintf("implementation panicked: %v", p.value)
}

// parseBody parses one JSON value. Only an empty body is null.
func parseBody(body []byte) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return parsed, nil
}

// encodeResponse serializes an encoded body. Null becomes an empty body.
func encodeResponse(statusCode int, encoded any) (*RawResponse, error) {
	header := make(http.Header)
	if encoded == nil {
		return &RawResponse{StatusCode: statusCode, Header: header}, nil
	}
	body, err := json.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("marshal response body: %w", err)
	}
	header.Set("Content-Type", "application/json")
	return &RawResponse{StatusCode: statusCode, Body: body, Header: header}, nil
}

func orEmpty(record map[string]string) map[string]string {
	if record == nil {
		return map[string]string{}
	}
	return record
}

func queryRecord(query url.Values) map[string]string {
	record := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			record[key] = values[0]
		}
	}
	return record
}

func headerRecord(header http.Header) map[string]string {
	record := make(map[string]string, len(header))
	for key, values := range header {
		record[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return record
}
