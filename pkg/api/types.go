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

package api

import (
	"time"

	"github.com/carverauto/netmon/pkg/models"
)

// DeviceStatus is one row of the status payload.
type DeviceStatus struct {
	ID                  string             `json:"id"`
	Address             string             `json:"address"`
	Label               string             `json:"label"`
	ActuatorLinked      bool               `json:"actuator_linked"`
	State               models.OnlineState `json:"state"`
	ConsecutiveFailures uint               `json:"consecutive_failures"`
	Degraded            bool               `json:"degraded"`
	LatencyMs           *float64           `json:"latency_ms,omitempty"`
	LastSuccess         *time.Time         `json:"last_success,omitempty"`
	LastChecked         *time.Time         `json:"last_checked,omitempty"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Devices              []DeviceStatus `json:"devices"`
	AggregateOnline      bool           `json:"aggregate_online"`
	Online               int            `json:"online"`
	Offline              int            `json:"offline"`
	Unknown              int            `json:"unknown"`
	SecondsUntilNextPoll int            `json:"seconds_until_next_poll"`
	NextPollIn           string         `json:"next_poll_in"`
	NextPoll             *time.Time     `json:"next_poll,omitempty"`
	LastCycle            *time.Time     `json:"last_cycle,omitempty"`
	Actuator             string         `json:"actuator"`
	Phase                string         `json:"phase,omitempty"`
	Timestamp            time.Time      `json:"timestamp"`
}

// DeviceRequest is the body of POST and PUT /api/devices.
type DeviceRequest struct {
	ID             string `json:"id"`
	Address        string `json:"address"`
	Label          string `json:"label"`
	ActuatorLinked bool   `json:"actuator_linked"`
}

func (r *DeviceRequest) device() models.Device {
	return models.Device{
		ID:             r.ID,
		Address:        r.Address,
		Label:          r.Label,
		ActuatorLinked: r.ActuatorLinked,
	}
}
