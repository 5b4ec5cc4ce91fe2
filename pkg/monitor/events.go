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
	"github.com/rs/zerolog"

	"github.com/carverauto/netmon/pkg/health"
	"github.com/carverauto/netmon/pkg/models"
)

// logTransition logs a device's event. Failures stay at debug until the
// device is declared offline.
func logTransition(log *zerolog.Logger, d *models.Device, rec *models.HealthRecord, event health.Event) {
	var e *zerolog.Event

	switch event {
	case health.EventWentOffline:
		e = log.Warn()
	case health.EventRecovered, health.EventCameOnline:
		e = log.Info()
	case health.EventNoChange, health.EventDegraded, health.EventStillOffline:
		e = log.Debug()
	default:
		e = log.Debug()
	}

	e = e.Str("device_id", d.ID).
		Str("device", d.DisplayName()).
		Str("address", d.Address).
		Str("event", event.String()).
		Str("state", rec.State.String()).
		Uint("consecutive_failures", rec.ConsecutiveFailures)

	if rec.LastLatency != nil && event != health.EventDegraded {
		e = e.Dur("latency", *rec.LastLatency)
	}

	switch event {
	case health.EventWentOffline:
		e.Msg("Device went offline")
	case health.EventRecovered:
		e.Msg("Device recovered")
	case health.EventCameOnline:
		e.Msg("Device online")
	case health.EventDegraded:
		e.Msg("Device probe failed below offline threshold")
	case health.EventStillOffline:
		e.Msg("Device still offline")
	case health.EventNoChange:
		e.Msg("Device healthy")
	default:
		e.Msg("Device health updated")
	}
}
