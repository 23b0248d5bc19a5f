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

// Package memhttptest starts memhttp servers scoped to a test.
package memhttptest

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"verdad.dev/verdad/internal/memhttp"
)

// NewServer starts a server for the duration of the test. Server errors are
// written to the test log.
func NewServer(tb testing.TB, handler http.Handler, opts ...memhttp.Option) *memhttp.Server {
	tb.Helper()
	opts = append([]memhttp.Option{memhttp.WithLogger(Logger(tb))}, opts...)
	server := memhttp.NewServer(handler, opts...)
	tb.Cleanup(func() {
		if err := server.Shutdown(context.Background()); err != nil {
			tb.Error(err)
		}
	})
	return server
}

// Logger returns a debug-level logger that writes to the test log.
func Logger(tb testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(&testWriter{tb}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	tb testing.TB
}

func (l *testWriter) Write(p []byte) (int, error) {
	l.tb.Log(string(p))
	return len(p), nil
}
