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

import "time"

// StatusSnapshot is a read-only view of the status store.
type StatusSnapshot struct {
	Devices              map[string]HealthRecord `json:"devices"`
	AggregateOnline      bool                    `json:"aggregate_online"`
	SecondsUntilNextPoll int                     `json:"seconds_until_next_poll"`
	NextPoll             time.Time               `json:"next_poll,omitempty"`
	LastCycle            time.Time               `json:"last_cycle,omitempty"`
	Timestamp            time.Time               `json:"timestamp"`
}
