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
	"time"

	"github.com/carverauto/netmon/pkg/models"
	"github.com/carverauto/netmon/pkg/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	defaultMetricsInterval    = 15 * time.Second
	defaultMetricsServiceName = "netmon"
)

var errMetricsEndpointRequired = errors.New("metrics endpoint is required when enabled")

// ShutdownFunc flushes and stops a telemetry provider.
type ShutdownFunc func(ctx context.Context) error

// InitMetrics installs a global OTLP/gRPC meter provider. When metrics are
// disabled the global no-op provider stays in place.
func InitMetrics(ctx context.Context, cfg *models.MetricsConfig) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	if cfg == nil || !cfg.Enabled {
		return noop, nil
	}

	if cfg.Endpoint == "" {
		return noop, errMetricsEndpointRequired
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	interval := time.Duration(cfg.Interval)
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultMetricsServiceName
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version.GetVersion()),
	)

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)

	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}
