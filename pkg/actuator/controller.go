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

package actuator

import (
	"context"
	"sync"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
)

// Entry is one device's contribution to the actuator decision.
type Entry struct {
	DeviceID string
	Linked   bool
	Record   models.HealthRecord
}

// Controller owns the actuator. It is the only path that writes it, and it
// skips writes when the desired level equals the last level written
// successfully.
type Controller struct {
	mu       sync.Mutex
	actuator Actuator
	logger   logger.Logger
	applied  Level
	known    bool
}

// NewController wraps act. The first Apply always writes.
func NewController(act Actuator, log logger.Logger) *Controller {
	return &Controller{
		actuator: act,
		logger:   log,
	}
}

// Desired returns On iff at least one linked entry is confirmed offline.
func Desired(entries []Entry) Level {
	for i := range entries {
		if entries[i].Linked && entries[i].Record.State == models.StateOffline {
			return On
		}
	}

	return Off
}

// Apply drives the actuator to the level the entries call for and returns
// that level. A failed write is logged and retried on the next call.
func (c *Controller) Apply(ctx context.Context, entries []Entry) Level {
	want := Desired(entries)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known && c.applied == want {
		return want
	}

	if err := c.actuator.SetLevel(ctx, want); err != nil {
		c.logger.Error().
			Err(err).
			Str("level", want.String()).
			Msg("Failed to set actuator level")

		return want
	}

	offline := offlineLinked(entries)

	c.logger.Info().
		Str("level", want.String()).
		Str("previous", c.describeApplied()).
		Strs("offline_devices", offline).
		Msg("Actuator level changed")

	c.applied = want
	c.known = true

	return want
}

// Level returns the last level written successfully. ok is false until the
// first successful write.
func (c *Controller) Level() (level Level, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.applied, c.known
}

func (c *Controller) describeApplied() string {
	if !c.known {
		return "unknown"
	}

	return c.applied.String()
}

func offlineLinked(entries []Entry) []string {
	var ids []string

	for i := range entries {
		if entries[i].Linked && entries[i].Record.State == models.StateOffline {
			ids = append(ids, entries[i].DeviceID)
		}
	}

	return ids
}
