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

// Package health turns noisy reachability samples into a debounced
// online/offline verdict.
package health

import (
	"fmt"
	"time"

	"github.com/carverauto/netmon/pkg/models"
)

// Event describes what a single transition did to a device's verdict.
type Event uint8

const (
	EventNoChange Event = iota
	// EventCameOnline is the first success of a never-probed device.
	EventCameOnline
	// EventRecovered is a success after a confirmed offline verdict.
	EventRecovered
	// EventDegraded is a failure below the offline threshold.
	EventDegraded
	EventWentOffline
	EventStillOffline
)

func (e Event) String() string {
	switch e {
	case EventNoChange:
		return "no_change"
	case EventCameOnline:
		return "came_online"
	case EventRecovered:
		return "recovered"
	case EventDegraded:
		return "degraded"
	case EventWentOffline:
		return "went_offline"
	case EventStillOffline:
		return "still_offline"
	default:
		return fmt.Sprintf("Event(%d)", uint8(e))
	}
}

// StateChanged reports whether the confirmed verdict moved.
func (e Event) StateChanged() bool {
	return e == EventCameOnline || e == EventRecovered || e == EventWentOffline
}

// Transition folds one probe result into the previous record. It is the only
// place where a device is declared offline. A threshold of zero is treated as
// one.
func Transition(prev models.HealthRecord, result models.ProbeResult, threshold uint, now time.Time) (models.HealthRecord, Event) {
	if threshold == 0 {
		threshold = 1
	}

	next := prev.Clone()
	next.LastChecked = now

	if result.Reachable {
		latency := result.Latency
		ts := now

		next.State = models.StateOnline
		next.ConsecutiveFailures = 0
		next.LastLatency = &latency
		next.LastSuccess = &ts

		switch prev.State {
		case models.StateOffline:
			return next, EventRecovered
		case models.StateUnknown:
			return next, EventCameOnline
		default:
			return next, EventNoChange
		}
	}

	next.ConsecutiveFailures = prev.ConsecutiveFailures + 1

	if next.ConsecutiveFailures >= threshold {
		next.State = models.StateOffline

		if prev.State == models.StateOffline {
			return next, EventStillOffline
		}

		return next, EventWentOffline
	}

	// Under threshold the previous verdict is carried forward.
	return next, EventDegraded
}
