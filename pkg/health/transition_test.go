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

package health

import (
	"testing"
	"time"

	"github.com/carverauto/netmon/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ok   = models.ProbeResult{Reachable: true, Latency: 4 * time.Millisecond}
	fail = models.ProbeResult{}
)

func run(t *testing.T, threshold uint, results ...models.ProbeResult) (models.HealthRecord, []Event) {
	t.Helper()

	var (
		rec    models.HealthRecord
		events []Event
		ev     Event
	)

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, res := range results {
		rec, ev = Transition(rec, res, threshold, now.Add(time.Duration(i)*time.Second))
		events = append(events, ev)
	}

	return rec, events
}

func TestTransition_ThresholdThreeScenario(t *testing.T) {
	rec, events := run(t, 3, fail, fail, fail)

	assert.Equal(t, []Event{EventDegraded, EventDegraded, EventWentOffline}, events)
	assert.Equal(t, models.StateOffline, rec.State)
	assert.Equal(t, uint(3), rec.ConsecutiveFailures)
	assert.Nil(t, rec.LastSuccess)

	rec, ev := Transition(rec, ok, 3, time.Now())

	assert.Equal(t, EventRecovered, ev)
	assert.Equal(t, models.StateOnline, rec.State)
	assert.Equal(t, uint(0), rec.ConsecutiveFailures)
	require.NotNil(t, rec.LastLatency)
	assert.Equal(t, 4*time.Millisecond, *rec.LastLatency)
	require.NotNil(t, rec.LastSuccess)
}

func TestTransition_SingleFailureDoesNotFlap(t *testing.T) {
	rec, events := run(t, 2, ok, ok, fail, ok, fail, ok)

	assert.Equal(t, []Event{
		EventCameOnline, EventNoChange, EventDegraded, EventNoChange, EventDegraded, EventNoChange,
	}, events)
	assert.Equal(t, models.StateOnline, rec.State)
	assert.Equal(t, uint(0), rec.ConsecutiveFailures)
}

func TestTransition_UnknownCarriedForwardUnderThreshold(t *testing.T) {
	rec, events := run(t, 3, fail, fail)

	assert.Equal(t, []Event{EventDegraded, EventDegraded}, events)
	assert.Equal(t, models.StateUnknown, rec.State)
	assert.Equal(t, uint(2), rec.ConsecutiveFailures)
}

func TestTransition_StillOffline(t *testing.T) {
	rec, events := run(t, 1, fail, fail, fail)

	assert.Equal(t, []Event{EventWentOffline, EventStillOffline, EventStillOffline}, events)
	assert.Equal(t, uint(3), rec.ConsecutiveFailures)
}

func TestTransition_ZeroThresholdActsAsOne(t *testing.T) {
	rec, ev := Transition(models.HealthRecord{}, fail, 0, time.Now())

	assert.Equal(t, EventWentOffline, ev)
	assert.Equal(t, models.StateOffline, rec.State)
}

func TestTransition_DoesNotAliasPrevious(t *testing.T) {
	prev, _ := Transition(models.HealthRecord{}, ok, 3, time.Now())
	before := *prev.LastSuccess

	_, _ = Transition(prev, ok, 3, before.Add(time.Minute))

	assert.Equal(t, before, *prev.LastSuccess)
}

// Every outcome sequence up to length 8: the verdict turns offline exactly on
// the sample where the failure streak first reaches the threshold.
func TestTransition_OfflineExactlyAtThreshold(t *testing.T) {
	const length = 8

	for threshold := uint(1); threshold <= 4; threshold++ {
		for mask := 0; mask < 1<<length; mask++ {
			var (
				rec    models.HealthRecord
				streak uint
			)

			for i := 0; i < length; i++ {
				res := ok
				if mask&(1<<i) != 0 {
					res = fail
				}

				wasOffline := rec.State == models.StateOffline

				var ev Event
				rec, ev = Transition(rec, res, threshold, time.Now())

				if res.Reachable {
					streak = 0

					require.Equal(t, models.StateOnline, rec.State)
					require.Zero(t, rec.ConsecutiveFailures)

					continue
				}

				streak++
				require.Equal(t, streak, rec.ConsecutiveFailures)

				switch {
				case streak < threshold:
					require.NotEqual(t, models.StateOffline, rec.State, "threshold=%d mask=%b i=%d", threshold, mask, i)
					require.Equal(t, EventDegraded, ev)
				case streak == threshold:
					require.Equal(t, models.StateOffline, rec.State)
					if !wasOffline {
						require.Equal(t, EventWentOffline, ev)
					}
				default:
					require.Equal(t, models.StateOffline, rec.State)
					require.Equal(t, EventStillOffline, ev)
				}
			}
		}
	}
}

func TestEvent_StateChanged(t *testing.T) {
	assert.True(t, EventWentOffline.StateChanged())
	assert.True(t, EventRecovered.StateChanged())
	assert.True(t, EventCameOnline.StateChanged())
	assert.False(t, EventDegraded.StateChanged())
	assert.False(t, EventStillOffline.StateChanged())
	assert.Equal(t, "went_offline", EventWentOffline.String())
}
