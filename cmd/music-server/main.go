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

// music-server serves the example music API over HTTP.
//
//	music-server -addr :8080 -stage test -grant secret=ada
//
// With -routes, it prints the API's methods as JSON and exits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"verdad.dev/verdad"
	"verdad.dev/verdad/internal/example/music"
)

const usage = "Usage: music-server [flags]"

type grants map[string]string

func (g grants) String() string {
	pairs := make([]string, 0, len(g))
	for token, user := range g {
		pairs = append(pairs, token+"="+user)
	}
	return strings.Join(pairs, ",")
}

func (g grants) Set(value string) error {
	token, user, ok := strings.Cut(value, "=")
	if !ok || token == "" || user == "" {
		return fmt.Errorf("grant %q isn't token=user", value)
	}
	g[token] = user
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("music-server", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, usage)
		flags.PrintDefaults()
	}
	addr := flags.String("addr", "localhost:8080", "listen address")
	stage := flags.String("stage", "test", "deployment stage passed to the implementation")
	logLevel := flags.String("log-level", "info", "minimum log level: debug, info, warn, or error")
	routes := flags.Bool("routes", false, "print the API's methods as JSON and exit")
	version := flags.Bool("version", false, "print the version and exit")
	granted := make(grants)
	flags.Var(granted, "grant", "token=user pair granting access to a user's playlists; repeatable")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *version {
		_, err := fmt.Fprintln(stdout, verdad.Version)
		return err
	}
	api, err := music.NewAPI(nil)
	if err != nil {
		return err
	}
	if *routes {
		return printRoutes(stdout, api)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	store := music.NewStore()
	for token, user := range granted {
		store.Grant(token, user)
	}
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat("/healthz"))
	verdad.Mount(router, music.NewHandlers(store,
		verdad.WithLogger(logger),
		verdad.WithStage(*stage),
		verdad.WithReadMaxBytes(1<<20),
	)...)

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info("serving", slog.String("addr", *addr), slog.String("stage", *stage))
		errs <- server.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

func printRoutes(w io.Writer, api *verdad.API) error {
	type route struct {
		Resource string `json:"resource"`
		verdad.MethodDescription
	}
	var listed []route
	api.ForEachMethod(func(key string, method verdad.AnyMethod) {
		listed = append(listed, route{Resource: key, MethodDescription: method.Describe()})
	})
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(listed)
}
