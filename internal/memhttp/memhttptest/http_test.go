// Copyright 2021-2025 The Connect Authors
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

package memhttptest_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"verdad.dev/verdad/internal/assert"
	"verdad.dev/verdad/internal/memhttp/memhttptest"
)

func TestNewServer(t *testing.T) {
	t.Parallel()
	const body = "request body"
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(w, r.Body)
	})
	server := memhttptest.NewServer(t, echo)
	res, err := server.Client().Post(server.URL(), "text/plain", strings.NewReader(body))
	assert.Nil(t, err)
	got, err := io.ReadAll(res.Body)
	assert.Nil(t, err)
	assert.Nil(t, res.Body.Close())
	assert.Equal(t, string(got), body)
}

func TestLogger(t *testing.T) {
	t.Parallel()
	logger := memhttptest.Logger(t)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
