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

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

var errUnknownOnlineState = fmt.Errorf("unknown online state")

// OnlineState is the confirmed reachability verdict for a device.
type OnlineState uint8

const (
	// StateUnknown means the device has not been probed yet.
	StateUnknown OnlineState = iota
	StateOnline
	StateOffline
)

func (s OnlineState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	default:
		return fmt.Sprintf("OnlineState(%d)", uint8(s))
	}
}

func (s OnlineState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OnlineState) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch v {
	case "unknown", "":
		*s = StateUnknown
	case "online":
		*s = StateOnline
	case "offline":
		*s = StateOffline
	default:
		return fmt.Errorf("%w: %q", errUnknownOnlineState, v)
	}

	return nil
}

// ProbeResult is the outcome of a single reachability probe. Latency is only
// meaningful when Reachable is true.
type ProbeResult struct {
	Reachable bool
	Latency   time.Duration
}

// HealthRecord is the per-device health state owned by the status store.
//
// State is the confirmed verdict. Failures below the offline threshold carry
// the previous verdict forward, so an online record may have a non-zero
// ConsecutiveFailures (see Degraded). A success always resets the counter.
type HealthRecord struct {
	State               OnlineState    `json:"state"`
	ConsecutiveFailures uint           `json:"consecutive_failures"`
	LastLatency         *time.Duration `json:"last_latency,omitempty"`
	LastSuccess         *time.Time     `json:"last_success,omitempty"`
	LastChecked         time.Time      `json:"last_checked,omitempty"`
}

// Online reports whether the record is confirmed online.
func (r HealthRecord) Online() bool {
	return r.State == StateOnline
}

// Degraded reports failures below the offline threshold.
func (r HealthRecord) Degraded() bool {
	return r.ConsecutiveFailures > 0 && r.State != StateOffline
}

// Clone returns a deep copy so callers cannot alias the optional fields.
func (r HealthRecord) Clone() HealthRecord {
	out := r

	if r.LastLatency != nil {
		lat := *r.LastLatency
		out.LastLatency = &lat
	}

	if r.LastSuccess != nil {
		ts := *r.LastSuccess
		out.LastSuccess = &ts
	}

	return out
}
