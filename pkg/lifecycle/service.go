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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/netmon/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

var errServiceStop = errors.New("service stop failed")

// Service is a long-running component managed by Run.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures Run.
type ServerOptions struct {
	ServiceName     string
	Services        []Service
	ShutdownTimeout time.Duration
	Logger          logger.Logger
}

// Run starts every service and blocks until the context is cancelled, a
// SIGINT/SIGTERM arrives, or a service fails. Services are stopped in reverse
// order.
func Run(ctx context.Context, opts *ServerOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	errCh := make(chan error, len(opts.Services))

	for _, svc := range opts.Services {
		go func(s Service) {
			if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}(svc)
	}

	log.Info().Str("service", opts.ServiceName).Int("components", len(opts.Services)).Msg("Service started")

	var runErr error

	select {
	case <-ctx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutdown signal received")
	case runErr = <-errCh:
		log.Error().Err(runErr).Str("service", opts.ServiceName).Msg("Component failed, shutting down")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stopErrs []error

	for i := len(opts.Services) - 1; i >= 0; i-- {
		if err := opts.Services[i].Stop(shutdownCtx); err != nil {
			stopErrs = append(stopErrs, err)
		}
	}

	if len(stopErrs) > 0 {
		stopErr := fmt.Errorf("%w: %w", errServiceStop, errors.Join(stopErrs...))
		if runErr == nil {
			return stopErr
		}

		return errors.Join(runErr, stopErr)
	}

	return runErr
}
