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
	"errors"
	"fmt"
	"time"
)

const (
	DefaultPollInterval     = 5 * time.Second
	DefaultOfflineThreshold = 3
	DefaultProbeTimeout     = 2 * time.Second
	DefaultFallbackDelay    = 30 * time.Second
	DefaultMaxConcurrency   = 1
	DefaultProbeMode        = "icmp"

	minPollInterval = 100 * time.Millisecond
)

var (
	errNegativeConcurrency = errors.New("max_concurrency must not be negative")
	errPollIntervalTooLow  = fmt.Errorf("poll_interval is below the minimum of %s", minPollInterval)
)

// MonitorConfig is the per-cycle configuration snapshot of the poll loop.
type MonitorConfig struct {
	PollInterval      Duration `json:"poll_interval" hot:"reload"`
	OfflineThreshold  uint     `json:"offline_threshold" hot:"reload"`
	ProbeTimeout      Duration `json:"probe_timeout" hot:"reload"`
	ProbeMode         string   `json:"probe_mode" hot:"restart"`
	Privileged        bool     `json:"privileged" hot:"restart"`
	MaxConcurrency    int      `json:"max_concurrency" hot:"reload"`
	ActuatorDeviceIDs []string `json:"actuator_device_ids,omitempty" hot:"reload"`
	FallbackDelay     Duration `json:"fallback_delay,omitempty" hot:"reload"`
}

// Validate fills in defaults and clamps the probe timeout so that it is
// strictly shorter than the poll interval.
func (c *MonitorConfig) Validate() error {
	if time.Duration(c.PollInterval) == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}

	if time.Duration(c.PollInterval) < minPollInterval {
		return errPollIntervalTooLow
	}

	if c.OfflineThreshold == 0 {
		c.OfflineThreshold = DefaultOfflineThreshold
	}

	if time.Duration(c.ProbeTimeout) <= 0 {
		c.ProbeTimeout = Duration(DefaultProbeTimeout)
	}

	if c.ProbeTimeout >= c.PollInterval {
		c.ProbeTimeout = c.PollInterval / 2
	}

	if c.ProbeMode == "" {
		c.ProbeMode = DefaultProbeMode
	}

	if c.MaxConcurrency < 0 {
		return errNegativeConcurrency
	}

	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}

	if time.Duration(c.FallbackDelay) <= 0 {
		c.FallbackDelay = Duration(DefaultFallbackDelay)
	}

	return nil
}

// ActuatorLinked reports whether the device drives the actuator, either via
// its own flag or via the configured id set.
func (c *MonitorConfig) ActuatorLinked(d Device) bool {
	if d.ActuatorLinked {
		return true
	}

	for _, id := range c.ActuatorDeviceIDs {
		if id == d.ID {
			return true
		}
	}

	return false
}
