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
	"log/slog"
	"net/http"
	"testing"

	"verdad.dev/verdad/internal/assert"
)

func TestClientOptions(t *testing.T) {
	t.Parallel()
	defaults := newClientConfig(nil)
	assert.True(t, defaults.HTTPClient == HTTPClient(http.DefaultClient))
	assert.True(t, defaults.Logger == slog.Default())
	assert.Equal(t, defaults.ReadMaxBytes, int64(0))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	httpClient := &http.Client{}
	config := newClientConfig([]ClientOption{
		WithClientOptions(
			WithLogger(logger),
			WithHTTPClient(httpClient),
		),
		WithReadMaxBytes(1024),
		WithRequestHeader("X-Trace", "a"),
		WithRequestHeader("X-Trace", "b"),
		WithLogger(nil),
		WithHTTPClient(nil),
	})
	assert.True(t, config.Logger == logger)
	assert.True(t, config.HTTPClient == HTTPClient(httpClient))
	assert.Equal(t, config.ReadMaxBytes, int64(1024))
	assert.Equal(t, config.Header.Values("X-Trace"), []string{"a", "b"})
}

func TestHandlerOptions(t *testing.T) {
	t.Parallel()
	defaults := newHandlerConfig(nil)
	assert.Equal(t, defaults.Stage, "")
	assert.True(t, defaults.Logger == slog.Default())

	config := newHandlerConfig([]HandlerOption{
		WithHandlerOptions(WithStage("prod"), WithReadMaxBytes(10)),
		WithStage("dev"),
	})
	assert.Equal(t, config.Stage, "dev")
	assert.Equal(t, config.ReadMaxBytes, int64(10))
}

func TestReadAll(t *testing.T) {
	t.Parallel()
	data, err := readAll(bytes.NewReader([]byte("12345")), 5)
	assert.Nil(t, err)
	assert.Equal(t, string(data), "12345")

	_, err = readAll(bytes.NewReader([]byte("123456")), 5)
	assert.ErrorAs[*http.MaxBytesError](t, err)
	assert.Equal(t, asMaxBytesError("read body", err).Error(), "read body: exceeded 5 byte limit: http: request body too large")

	data, err = readAll(bytes.NewReader([]byte("unlimited")), 0)
	assert.Nil(t, err)
	assert.Equal(t, string(data), "unlimited")
	assert.Nil(t, asMaxBytesError("read body", nil))
}
