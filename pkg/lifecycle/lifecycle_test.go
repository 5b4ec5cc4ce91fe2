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

package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (f *fakeService) Start(ctx context.Context) error {
	f.started.Store(true)

	if f.startErr != nil {
		return f.startErr
	}

	<-ctx.Done()

	return ctx.Err()
}

func (f *fakeService) Stop(_ context.Context) error {
	f.stopped.Store(true)
	return f.stopErr
}

func TestRun_StopsServicesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	a, b := &fakeService{}, &fakeService{}

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &ServerOptions{
			ServiceName: "test",
			Services:    []Service{a, b},
			Logger:      logger.NewTestLogger(),
		})
	}()

	require.Eventually(t, func() bool { return a.started.Load() && b.started.Load() }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.True(t, a.stopped.Load())
	assert.True(t, b.stopped.Load())
}

func TestRun_ReturnsComponentFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeService{startErr: boom}
	healthy := &fakeService{}

	err := Run(context.Background(), &ServerOptions{
		ServiceName:     "test",
		Services:        []Service{healthy, failing},
		ShutdownTimeout: time.Second,
	})

	require.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped.Load())
}

func TestRun_ReportsStopErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stuck := &fakeService{stopErr: errors.New("stuck")}

	err := Run(ctx, &ServerOptions{Services: []Service{stuck}})
	require.ErrorIs(t, err, errServiceStop)
}

func TestCreateComponentLogger(t *testing.T) {
	var buf bytes.Buffer

	root := logger.NewWriterLogger(&buf, zerolog.InfoLevel)
	log := ForComponent(root, "scheduler")

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	log.SetDebug(true)
	log.Debug().Msg("now shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"component":"scheduler"`)
	assert.Contains(t, out, "now shown")

	_, err := CreateComponentLogger("scheduler", &logger.Config{Level: "bogus"})
	require.Error(t, err)
}

func TestInitMetrics_Disabled(t *testing.T) {
	shutdown, err := InitMetrics(context.Background(), &models.MetricsConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitMetrics(context.Background(), &models.MetricsConfig{Enabled: true})
	require.ErrorIs(t, err, errMetricsEndpointRequired)
}
