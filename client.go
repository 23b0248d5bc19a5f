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
)

// HTTPClient is the interface between clients and the network. *http.Client
// implements it.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// A Client calls the methods of one API on one of its servers. Clients are
// safe for concurrent use. Use Do to make calls.
type Client struct {
	api     *API
	server  string
	baseURL string
	config  *clientConfig
}

// NewClient returns a client for the named server of api. It fails with
// ErrUnknownServer if the API doesn't list the server.
func NewClient(api *API, server string, options ...ClientOption) (*Client, error) {
	baseURL, err := api.ServerURL(server)
	if err != nil {
		return nil, err
	}
	return &Client{
		api:     api,
		server:  server,
		baseURL: baseURL,
		config:  newClientConfig(options),
	}, nil
}

// API returns the API the client calls.
func (c *Client) API() *API { return c.api }

// BaseURL returns the URL of the client's server.
func (c *Client) BaseURL() string { return c.baseURL }

// Do calls method and returns its decoded success response.
//
// Every other outcome is reported as a *CallError[E]: a request that couldn't
// be built, a request that got no response, a status code the method doesn't
// declare, a body that doesn't fit the declared codec, or a declared error
// response. The one exception is cancellation: if ctx is done before a
// response arrives, Do returns the transport's error unchanged, and it
// matches context.Canceled or context.DeadlineExceeded with errors.Is.
func Do[P, Q, H, B, S, E any](ctx context.Context, client *Client, method *Method[P, Q, H, B, S, E], call *Call[P, Q, H, B]) (*Response[S], error) {
	if call == nil {
		call = &Call[P, Q, H, B]{}
	}
	logger := client.config.Logger.With(slog.String("method", method.String()))
	request, body, err := newRequest(ctx, client, method, call)
	if err != nil {
		return nil, &CallError[E]{Kind: FailureRequestNotMade, Request: request, err: err}
	}
	logger.DebugContext(ctx, "calling method",
		slog.String("url", request.URL.String()),
		slog.String("body", string(body)),
	)
	response, err := client.config.HTTPClient.Do(request)
	if err != nil {
		if isContextError(ctx, err) {
			return nil, err
		}
		return nil, &CallError[E]{Kind: FailureNoResponse, Request: request, err: err}
	}
	defer response.Body.Close()
	responseBody, err := readAll(response.Body, client.config.ReadMaxBytes)
	if err != nil {
		if isContextError(ctx, err) {
			return nil, err
		}
		if limitErr := asMaxBytesError("read response body", err); limitErr != nil {
			err = limitErr
		}
		return nil, &CallError[E]{
			Kind:       FailureNoResponse,
			StatusCode: response.StatusCode,
			Header:     response.Header,
			Request:    request,
			err:        err,
		}
	}
	result, err := classify(method, request, response.StatusCode, response.Header, responseBody)
	if err != nil {
		logger.DebugContext(ctx, "call failed", slog.Int("status", response.StatusCode), slog.Any("error", err))
		return nil, err
	}
	logger.DebugContext(ctx, "call succeeded", slog.Int("status", response.StatusCode))
	return result, nil
}

// newRequest renders the path and encodes the parameters and body of call.
// It returns the request body too, for logging.
func newRequest[P, Q, H, B, S, E any](
	ctx context.Context,
	client *Client,
	method *Method[P, Q, H, B, S, E],
	call *Call[P, Q, H, B],
) (*http.Request, []byte, error) {
	definition := method.definition
	path, err := RenderPath(method.path, definition.PathParameters, call.PathParameters)
	if err != nil {
		return nil, nil, err
	}
	query, err := toStringRecord(definition.QueryParameters.Encode(call.QueryParameters))
	if err != nil {
		return nil, nil, fmt.Errorf("encode query parameters: %w", err)
	}
	headers, err := toStringRecord(definition.HeaderParameters.Encode(call.HeaderParameters))
	if err != nil {
		return nil, nil, fmt.Errorf("encode header parameters: %w", err)
	}
	var body []byte
	if encoded := definition.RequestBody.Encode(call.RequestBody); encoded != nil {
		body, err = json.Marshal(encoded)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request body: %w", err)
		}
	}
	target := client.baseURL + path
	if len(query) > 0 {
		values := make(url.Values, len(query))
		for key, value := range query {
			values.Set(key, value)
		}
		target += "?" + values.Encode()
	}
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method.verb.String(), target, reader)
	if err != nil {
		return nil, nil, err
	}
	request.Header = client.config.Header.Clone()
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	return request, body, nil
}

// classify sorts a response into the method's declared success and error
// sets and decodes its body accordingly.
func classify[P, Q, H, B, S, E any](
	method *Method[P, Q, H, B, S, E],
	request *http.Request,
	statusCode int,
	header http.Header,
	body []byte,
) (*Response[S], error) {
	definition := method.definition
	callErr := &CallError[E]{
		StatusCode: statusCode,
		Body:       body,
		Header:     header,
		Request:    request,
	}
	switch {
	case method.isSuccess(statusCode):
		value, errs := decodeBody(definition.Success.Body, body)
		if len(errs) > 0 {
			callErr.Kind = FailureUndecodableSuccess
			callErr.Side = SideSuccess
			callErr.DecodeErrors = errs
			return nil, callErr
		}
		return &Response[S]{StatusCode: statusCode, Body: value}, nil
	case method.isError(statusCode):
		callErr.Side = SideError
		value, errs := decodeBody(definition.Error.Body, body)
		if len(errs) > 0 {
			callErr.Kind = FailureUndecodableError
			callErr.DecodeErrors = errs
			return nil, callErr
		}
		callErr.Kind = FailureErrorResponse
		callErr.ErrorResponse = &Response[E]{StatusCode: statusCode, Body: value}
		return nil, callErr
	default:
		callErr.Kind = FailureUnexpectedStatusCode
		callErr.Side = sideOf(statusCode)
		return nil, callErr
	}
}

// decodeBody parses and validates a response body. An empty body is null.
func decodeBody[T any](codec Codec[T], body []byte) (T, Errors) {
	context := rootContext(codec.Name())
	parsed, err := parseBody(body)
	if err != nil {
		var zero T
		return zero, failuref(string(body), context, "body isn't JSON: %v", err)
	}
	return codec.Validate(parsed, context)
}

func isContextError(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
