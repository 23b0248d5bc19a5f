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

package memhttp

import (
	"log/slog"
	"time"
)

// An Option configures a Server.
type Option interface {
	apply(*config)
}

type config struct {
	CleanupTimeout time.Duration
	Logger         *slog.Logger
	HTTP2          bool
}

type optionFunc func(*config)

func (f optionFunc) apply(cfg *config) { f(cfg) }

// WithOptions composes multiple Options into one.
func WithOptions(opts ...Option) Option {
	return optionFunc(func(cfg *config) {
		for _, opt := range opts {
			opt.apply(cfg)
		}
	})
}

// WithLogger sends the server's internal errors, such as failed handshakes,
// to logger at error level.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(cfg *config) {
		cfg.Logger = logger
	})
}

// WithCleanupTimeout customizes the default five-second timeout for the
// server's Cleanup method.
func WithCleanupTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *config) {
		cfg.CleanupTimeout = d
	})
}

// WithoutHTTP2 disables h2c, so the server and its Client speak HTTP/1.1.
func WithoutHTTP2() Option {
	return optionFunc(func(cfg *config) {
		cfg.HTTP2 = false
	})
}
