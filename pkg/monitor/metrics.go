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

package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/netmon/pkg/actuator"
	"github.com/carverauto/netmon/pkg/status"
)

const (
	monitorMeterName = "github.com/carverauto/netmon/pkg/monitor"

	metricDevicesTotalName    = "netmon_devices_total"
	metricDevicesOnlineName   = "netmon_devices_online"
	metricDevicesOfflineName  = "netmon_devices_offline"
	metricActuatorLevelName   = "netmon_actuator_level"
	metricCycleDurationName   = "netmon_cycle_duration_ms"
	metricCyclesName          = "netmon_cycles_total"
	metricCycleFailuresName   = "netmon_cycle_failures_total"
	metricProbeFailuresName   = "netmon_probe_failures_total"
	metricDeviceAttributeName = "device_id"
)

var (
	//nolint:gochecknoglobals // metric observers are shared singletons
	monitorMetricsOnce sync.Once
	//nolint:gochecknoglobals // metric observers are shared singletons
	monitorMetricsData = &monitorMetricsObservatory{}
	//nolint:gochecknoglobals // metric observers are shared singletons
	monitorMetricsInstruments struct {
		devicesTotal   metric.Int64ObservableGauge
		devicesOnline  metric.Int64ObservableGauge
		devicesOffline metric.Int64ObservableGauge
		actuatorLevel  metric.Int64ObservableGauge
		cycleDuration  metric.Int64ObservableGauge
		cycles         metric.Int64Counter
		cycleFailures  metric.Int64Counter
		probeFailures  metric.Int64Counter
	}
	monitorMetricsRegistration metric.Registration //nolint:unused,gochecknoglobals // reference retained to keep callback registered
)

type monitorMetricsObservatory struct {
	devicesTotal    atomic.Int64
	devicesOnline   atomic.Int64
	devicesOffline  atomic.Int64
	actuatorLevel   atomic.Int64
	cycleDurationMs atomic.Int64
}

func initMonitorMetrics() {
	meter := otel.Meter(monitorMeterName)

	var err error

	gauges := []struct {
		dst  *metric.Int64ObservableGauge
		name string
		desc string
	}{
		{&monitorMetricsInstruments.devicesTotal, metricDevicesTotalName, "Devices tracked in the last poll cycle"},
		{&monitorMetricsInstruments.devicesOnline, metricDevicesOnlineName, "Devices confirmed online after the last poll cycle"},
		{&monitorMetricsInstruments.devicesOffline, metricDevicesOfflineName, "Devices confirmed offline after the last poll cycle"},
		{&monitorMetricsInstruments.actuatorLevel, metricActuatorLevelName, "Relay level requested in the last poll cycle (1 = on)"},
		{&monitorMetricsInstruments.cycleDuration, metricCycleDurationName, "Wall time of the last poll cycle in milliseconds"},
	}

	for _, g := range gauges {
		*g.dst, err = meter.Int64ObservableGauge(g.name, metric.WithDescription(g.desc))
		if err != nil {
			otel.Handle(err)
			return
		}
	}

	monitorMetricsInstruments.cycles, err = meter.Int64Counter(
		metricCyclesName,
		metric.WithDescription("Completed poll cycles"),
	)
	if err != nil {
		otel.Handle(err)
		return
	}

	monitorMetricsInstruments.cycleFailures, err = meter.Int64Counter(
		metricCycleFailuresName,
		metric.WithDescription("Poll cycles aborted by a configuration, registry or internal error"),
	)
	if err != nil {
		otel.Handle(err)
		return
	}

	monitorMetricsInstruments.probeFailures, err = meter.Int64Counter(
		metricProbeFailuresName,
		metric.WithDescription("Failed reachability probes"),
	)
	if err != nil {
		otel.Handle(err)
		return
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(monitorMetricsInstruments.devicesTotal, monitorMetricsData.devicesTotal.Load())
		observer.ObserveInt64(monitorMetricsInstruments.devicesOnline, monitorMetricsData.devicesOnline.Load())
		observer.ObserveInt64(monitorMetricsInstruments.devicesOffline, monitorMetricsData.devicesOffline.Load())
		observer.ObserveInt64(monitorMetricsInstruments.actuatorLevel, monitorMetricsData.actuatorLevel.Load())
		observer.ObserveInt64(monitorMetricsInstruments.cycleDuration, monitorMetricsData.cycleDurationMs.Load())
		return nil
	},
		monitorMetricsInstruments.devicesTotal,
		monitorMetricsInstruments.devicesOnline,
		monitorMetricsInstruments.devicesOffline,
		monitorMetricsInstruments.actuatorLevel,
		monitorMetricsInstruments.cycleDuration,
	)
	if err != nil {
		otel.Handle(err)
		return
	}

	monitorMetricsRegistration = registration
}

func recordCycleMetrics(ctx context.Context, counts status.Counts, level actuator.Level, took time.Duration) {
	monitorMetricsOnce.Do(initMonitorMetrics)

	monitorMetricsData.devicesTotal.Store(int64(counts.Total))
	monitorMetricsData.devicesOnline.Store(int64(counts.Online))
	monitorMetricsData.devicesOffline.Store(int64(counts.Offline))
	monitorMetricsData.actuatorLevel.Store(int64(level))
	monitorMetricsData.cycleDurationMs.Store(took.Milliseconds())

	if monitorMetricsInstruments.cycles != nil {
		monitorMetricsInstruments.cycles.Add(ctx, 1)
	}
}

func recordCycleFailure(ctx context.Context) {
	monitorMetricsOnce.Do(initMonitorMetrics)

	if monitorMetricsInstruments.cycleFailures != nil {
		monitorMetricsInstruments.cycleFailures.Add(ctx, 1)
	}
}

func recordProbeFailure(ctx context.Context, deviceID string) {
	monitorMetricsOnce.Do(initMonitorMetrics)

	if monitorMetricsInstruments.probeFailures != nil {
		monitorMetricsInstruments.probeFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String(metricDeviceAttributeName, deviceID)))
	}
}
