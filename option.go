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
	"log/slog"
	"net/http"
)

// A ClientOption configures a Client.
//
// In addition to any options grouped in the documentation below, remember that
// any Option is also a valid ClientOption.
type ClientOption interface {
	applyToClient(*clientConfig)
}

// A HandlerOption configures a Handler.
//
// In addition to any options grouped in the documentation below, remember that
// any Option is also a HandlerOption.
type HandlerOption interface {
	applyToHandler(*handlerConfig)
}

// Option implements both ClientOption and HandlerOption, so it can be applied
// both client-side and server-side.
type Option interface {
	ClientOption
	HandlerOption
}

// WithClientOptions composes multiple ClientOptions into one.
func WithClientOptions(options ...ClientOption) ClientOption {
	return &clientOptionsOption{options}
}

// WithHandlerOptions composes multiple HandlerOptions into one.
func WithHandlerOptions(options ...HandlerOption) HandlerOption {
	return &handlerOptionsOption{options}
}

// WithLogger sets the structured logger. Handlers log internal faults at
// error level; clients log each call at debug level. Both default to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return &loggerOption{logger: logger}
}

// WithReadMaxBytes limits the performance impact of pathologically large
// bodies sent by the other party. For handlers, it limits the size of request
// bodies; larger bodies are treated as unreadable and answered as
// FaultNonJSONRequestBody. For clients, it limits the size of response bodies;
// larger bodies fail the call with FailureNoResponse.
//
// Setting WithReadMaxBytes to zero allows any size. Both clients and handlers
// default to allowing any size.
func WithReadMaxBytes(max int64) Option {
	return &readMaxBytesOption{Max: max}
}

// WithHTTPClient sets the transport clients send requests with. It defaults
// to http.DefaultClient.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return &httpClientOption{httpClient: httpClient}
}

// WithRequestHeader adds a header to every request the client sends. Header
// parameters encoded from a Call take precedence.
func WithRequestHeader(key, value string) ClientOption {
	return &requestHeaderOption{key: key, value: value}
}

// WithStage names the deployment stage a handler runs in, such as "prod".
// It's passed to implementations in Request.Stage.
func WithStage(stage string) HandlerOption {
	return &stageOption{stage: stage}
}

type clientOptionsOption struct {
	options []ClientOption
}

func (o *clientOptionsOption) applyToClient(config *clientConfig) {
	for _, option := range o.options {
		option.applyToClient(config)
	}
}

type handlerOptionsOption struct {
	options []HandlerOption
}

func (o *handlerOptionsOption) applyToHandler(config *handlerConfig) {
	for _, option := range o.options {
		option.applyToHandler(config)
	}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o *loggerOption) applyToClient(config *clientConfig) {
	if o.logger != nil {
		config.Logger = o.logger
	}
}

func (o *loggerOption) applyToHandler(config *handlerConfig) {
	if o.logger != nil {
		config.Logger = o.logger
	}
}

type readMaxBytesOption struct {
	Max int64
}

func (o *readMaxBytesOption) applyToClient(config *clientConfig) {
	config.ReadMaxBytes = o.Max
}

func (o *readMaxBytesOption) applyToHandler(config *handlerConfig) {
	config.ReadMaxBytes = o.Max
}

type httpClientOption struct {
	httpClient HTTPClient
}

func (o *httpClientOption) applyToClient(config *clientConfig) {
	if o.httpClient != nil {
		config.HTTPClient = o.httpClient
	}
}

type requestHeaderOption struct {
	key, value string
}

func (o *requestHeaderOption) applyToClient(config *clientConfig) {
	config.Header.Add(o.key, o.value)
}

type stageOption struct {
	stage string
}

func (o *stageOption) applyToHandler(config *handlerConfig) {
	config.Stage = o.stage
}

type clientConfig struct {
	HTTPClient   HTTPClient
	Logger       *slog.Logger
	ReadMaxBytes int64
	Header       http.Header
}

func newClientConfig(options []ClientOption) *clientConfig {
	config := clientConfig{
		HTTPClient: http.DefaultClient,
		Logger:     slog.Default(),
		Header:     make(http.Header),
	}
	for _, option := range options {
		option.applyToClient(&config)
	}
	return &config
}

type handlerConfig struct {
	Logger       *slog.Logger
	ReadMaxBytes int64
	Stage        string
}

func newHandlerConfig(options []HandlerOption) *handlerConfig {
	config := handlerConfig{
		Logger: slog.Default(),
	}
	for _, option := range options {
		option.applyToHandler(&config)
	}
	return &config
}
