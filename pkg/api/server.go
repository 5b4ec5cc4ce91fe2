/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api serves the read-only status view and device management over
// HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/netmon/pkg/actuator"
	srHttp "github.com/carverauto/netmon/pkg/http"
	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
	"github.com/carverauto/netmon/pkg/monitor"
	"github.com/carverauto/netmon/pkg/registry"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	maxBodyBytes        = 64 << 10
)

// StatusReader is the read side of the status store.
type StatusReader interface {
	Snapshot(now time.Time) models.StatusSnapshot
}

// LevelReader reports the last level written to the actuator.
type LevelReader interface {
	Level() (actuator.Level, bool)
}

// PhaseReader reports the scheduler state.
type PhaseReader interface {
	Phase() monitor.Phase
}

// Server is the netmon HTTP API.
type Server struct {
	addr       string
	router     *mux.Router
	handler    http.Handler
	status     StatusReader
	registry   registry.Service
	actuator   LevelReader
	scheduler  PhaseReader
	corsConfig models.CORSConfig
	logger     logger.Logger
	now        func() time.Time

	srv *http.Server
}

// WithActuator exposes the actuator level in the status payload.
func WithActuator(l LevelReader) func(*Server) {
	return func(s *Server) {
		s.actuator = l
	}
}

// WithScheduler exposes the scheduler phase in the status payload.
func WithScheduler(p PhaseReader) func(*Server) {
	return func(s *Server) {
		s.scheduler = p
	}
}

// WithCORS sets the allowed browser origins.
func WithCORS(c models.CORSConfig) func(*Server) {
	return func(s *Server) {
		s.corsConfig = c
	}
}

// NewServer creates the API server listening on addr.
func NewServer(addr string, status StatusReader, reg registry.Service, log logger.Logger, options ...func(*Server)) *Server {
	s := &Server{
		addr:     addr,
		router:   mux.NewRouter(),
		status:   status,
		registry: reg,
		logger:   log,
		now:      time.Now,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.addDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}", s.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", s.updateDevice).Methods(http.MethodPut)
	api.HandleFunc("/devices/{id}", s.removeDevice).Methods(http.MethodDelete)

	// Wrapping the router, rather than router.Use, lets preflight requests
	// through for paths that have no OPTIONS route.
	s.handler = srHttp.CommonMiddleware(s.router, s.corsConfig, s.logger)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start implements the lifecycle.Service interface. It blocks until the
// server stops.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until Stop is called.
func (s *Server) Serve(_ context.Context, ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("API server listening")

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop implements the lifecycle.Service interface.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
