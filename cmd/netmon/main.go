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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/carverauto/netmon/pkg/actuator"
	"github.com/carverauto/netmon/pkg/api"
	"github.com/carverauto/netmon/pkg/config"
	"github.com/carverauto/netmon/pkg/lifecycle"
	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
	"github.com/carverauto/netmon/pkg/monitor"
	"github.com/carverauto/netmon/pkg/probe"
	"github.com/carverauto/netmon/pkg/registry"
	"github.com/carverauto/netmon/pkg/status"
	"github.com/carverauto/netmon/pkg/version"
)

var errFailedToLoadConfig = errors.New("failed to load config")

const metricsShutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/netmon/netmon.json", "Path to netmon config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return nil
	}

	ctx := context.Background()

	var cfg config.Config

	if err := config.NewLoader(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	rootLogger, err := lifecycle.CreateLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	rootLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("config", *configPath).
		Msg("Starting netmon")

	shutdownMetrics, err := lifecycle.InitMetrics(ctx, &cfg.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		if err := shutdownMetrics(flushCtx); err != nil {
			rootLogger.Warn().Err(err).Msg("Failed to flush metrics")
		}
	}()

	reg, closeRegistry, err := openRegistry(ctx, &cfg, lifecycle.ForComponent(rootLogger, "registry"))
	if err != nil {
		return err
	}
	defer closeRegistry()

	prober, err := probe.DefaultRegistry().New(cfg.Monitor.ProbeMode, probe.Options{
		Timeout:    time.Duration(cfg.Monitor.ProbeTimeout),
		Privileged: cfg.Monitor.Privileged,
	})
	if err != nil {
		return fmt.Errorf("failed to create prober: %w", err)
	}

	actuatorLogger := lifecycle.ForComponent(rootLogger, "actuator")

	act, err := actuator.New(&cfg.Actuator, actuatorLogger)
	if err != nil {
		return fmt.Errorf("failed to create actuator: %w", err)
	}

	controller := actuator.NewController(act, actuatorLogger)
	store := status.NewStore()

	scheduler := monitor.New(
		configProvider(*configPath, &cfg, lifecycle.ForComponent(rootLogger, "config")),
		reg,
		prober,
		store,
		controller,
		lifecycle.ForComponent(rootLogger, "scheduler"),
	)

	apiServer := api.NewServer(cfg.ListenAddr, store, reg, lifecycle.ForComponent(rootLogger, "api"),
		api.WithActuator(controller),
		api.WithScheduler(scheduler),
		api.WithCORS(models.CORSConfig{AllowedOrigins: cfg.CORSOrigins}),
	)

	return lifecycle.Run(ctx, &lifecycle.ServerOptions{
		ServiceName: "netmon",
		Services:    []lifecycle.Service{scheduler, apiServer},
		Logger:      rootLogger,
	})
}

// openRegistry loads the device registry, backed by SQLite when configured.
func openRegistry(ctx context.Context, cfg *config.Config, log logger.Logger) (*registry.Registry, func(), error) {
	var persister registry.Persister

	closeFn := func() {}

	if cfg.RegistryDB != "" {
		p, err := registry.OpenSQLite(ctx, cfg.RegistryDB)
		if err != nil {
			return nil, nil, err
		}

		persister = p
		closeFn = func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close registry database")
			}
		}
	}

	reg := registry.New(log, persister)

	if err := reg.Load(ctx, cfg.Devices); err != nil {
		closeFn()

		return nil, nil, err
	}

	return reg, closeFn, nil
}

// configProvider re-reads the config file each cycle. Environment-sourced
// configuration cannot change at runtime, so it is served as is.
func configProvider(path string, cfg *config.Config, log logger.Logger) monitor.ConfigProvider {
	if strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "env") {
		p, err := config.NewStaticProvider(cfg.Monitor)
		if err == nil {
			return p
		}
	}

	return config.NewFileProvider(path, nil, log, &cfg.Monitor)
}
