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
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netmon/pkg/health"
	"github.com/carverauto/netmon/pkg/models"
)

func TestLogTransition_Severity(t *testing.T) {
	tests := []struct {
		event health.Event
		level string
	}{
		{health.EventWentOffline, "warn"},
		{health.EventRecovered, "info"},
		{health.EventCameOnline, "info"},
		{health.EventDegraded, "debug"},
		{health.EventStillOffline, "debug"},
		{health.EventNoChange, "debug"},
	}

	d := &models.Device{ID: "router", Address: "10.0.0.1", Label: "Core router"}

	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			var buf bytes.Buffer

			log := zerolog.New(&buf).Level(zerolog.DebugLevel)
			logTransition(&log, d, &models.HealthRecord{State: models.StateOffline, ConsecutiveFailures: 3}, tt.event)

			var line map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, "router", line["device_id"])
			assert.Equal(t, "Core router", line["device"])
			assert.Equal(t, tt.event.String(), line["event"])
		})
	}
}

func TestLogTransition_DegradedHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer

	log := zerolog.New(&buf).Level(zerolog.InfoLevel)
	logTransition(&log, &models.Device{ID: "nas"}, &models.HealthRecord{State: models.StateOnline, ConsecutiveFailures: 1}, health.EventDegraded)

	assert.Empty(t, buf.String())
}
