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

// Device is a monitored network endpoint. ID is the unique key (the device
// name); Address is an IP literal or hostname, optionally with a port for
// TCP probing.
type Device struct {
	ID             string `json:"id"`
	Address        string `json:"address"`
	Label          string `json:"label,omitempty"`
	ActuatorLinked bool   `json:"actuator_linked"`
}

// DisplayName returns the label, falling back to the ID.
func (d Device) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}

	return d.ID
}
