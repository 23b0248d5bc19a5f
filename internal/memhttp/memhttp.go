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

// Package memhttp serves HTTP over in-memory pipes. Tests use it to run real
// servers and clients without opening sockets.
package memhttp

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server is a net/http server that uses in-memory pipes instead of TCP. By
// default, it supports HTTP/2 via h2c. It otherwise uses the same
// configuration as the zero value of [http.Server].
type Server struct {
	server         http.Server
	listener       *pipeListener
	url            string
	cleanupTimeout time.Duration
	http2          bool

	serverWG  sync.WaitGroup
	serverErr error
}

// NewServer creates a new Server that uses the given handler. Configuration
// options may be provided via [Option]s.
func NewServer(handler http.Handler, opts ...Option) *Server {
	cfg := config{
		CleanupTimeout: 5 * time.Second,
		HTTP2:          true,
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.HTTP2 {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	listener := newPipeListener("1.2.3.4") // httptest.DefaultRemoteAddr
	server := &Server{
		server: http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener:       listener,
		url:            "http://" + listener.Addr().String(),
		cleanupTimeout: cfg.CleanupTimeout,
		http2:          cfg.HTTP2,
	}
	if cfg.Logger != nil {
		server.server.ErrorLog = slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelError)
	}
	server.serverWG.Add(1)
	go func() {
		defer server.serverWG.Done()
		server.serverErr = server.server.Serve(server.listener)
	}()
	return server
}

// Transport returns an [http2.Transport] configured to use in-memory pipes
// rather than TCP and speak both HTTP/1.1 and HTTP/2.
//
// Callers may reconfigure the returned transport without affecting other
// transports.
func (s *Server) Transport() *http2.Transport {
	return &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return s.listener.DialContext(ctx, network, addr)
		},
		AllowHTTP: true,
	}
}

// TransportHTTP1 returns an [http.Transport] configured to use in-memory
// pipes rather than TCP and speak HTTP/1.1.
func (s *Server) TransportHTTP1() *http.Transport {
	return &http.Transport{
		DialContext:       s.listener.DialContext,
		DisableKeepAlives: true,
	}
}

// Client returns an [http.Client] configured to use in-memory pipes rather
// than TCP, speaking HTTP/2 unless the server was built WithoutHTTP2.
func (s *Server) Client() *http.Client {
	if !s.http2 {
		return &http.Client{Transport: s.TransportHTTP1()}
	}
	return &http.Client{Transport: s.Transport()}
}

// URL returns the server's URL. It's suitable as an entry in a server
// catalog.
func (s *Server) URL() string {
	return s.url
}

// Shutdown gracefully shuts down the server, without interrupting any active
// connections. See [http.Server.Shutdown] for details.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.Wait()
}

// Cleanup calls Shutdown with a five second timeout. To customize the timeout,
// use WithCleanupTimeout.
func (s *Server) Cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Close closes the server's listener. It does not wait for connections to
// finish.
func (s *Server) Close() error {
	return s.server.Close()
}

// RegisterOnShutdown registers a function to call on Shutdown. It's often
// used to cleanly shut down connections that have been hijacked. See
// [http.Server.RegisterOnShutdown] for details.
func (s *Server) RegisterOnShutdown(f func()) {
	s.server.RegisterOnShutdown(f)
}

// Wait blocks until the server exits, then returns an error if not
// a [http.ErrServerClosed] error.
func (s *Server) Wait() error {
	s.serverWG.Wait()
	if !errors.Is(s.serverErr, http.ErrServerClosed) {
		return s.serverErr
	}
	return nil
}
