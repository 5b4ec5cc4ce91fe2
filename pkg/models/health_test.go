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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlineState_JSON(t *testing.T) {
	for _, state := range []OnlineState{StateUnknown, StateOnline, StateOffline} {
		data, err := json.Marshal(state)
		require.NoError(t, err)

		var got OnlineState
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, state, got)
	}

	var s OnlineState
	require.ErrorIs(t, json.Unmarshal([]byte(`"flapping"`), &s), errUnknownOnlineState)
}

func TestHealthRecord_CloneDoesNotAlias(t *testing.T) {
	lat := 12 * time.Millisecond
	ts := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	rec := HealthRecord{State: StateOnline, LastLatency: &lat, LastSuccess: &ts}
	clone := rec.Clone()

	*clone.LastLatency = time.Second
	*clone.LastSuccess = ts.Add(time.Hour)

	assert.Equal(t, 12*time.Millisecond, *rec.LastLatency)
	assert.Equal(t, ts, *rec.LastSuccess)
}
