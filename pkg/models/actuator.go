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

const (
	ActuatorTypeLog  = "log"
	ActuatorTypeFile = "file"
)

// ActuatorConfig selects the relay driver.
type ActuatorConfig struct {
	// Type is "log" (no hardware) or "file" (write 1/0 to a value file such
	// as /sys/class/gpio/gpio17/value).
	Type      string `json:"type"`
	Path      string `json:"path,omitempty"`
	ActiveLow bool   `json:"active_low,omitempty"`
}
