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

package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
)

var errDiskFull = errors.New("disk full")

type memPersister struct {
	mu      sync.Mutex
	devices []models.Device
	saves   int
	fail    bool
}

func (m *memPersister) Load(context.Context) ([]models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.Device(nil), m.devices...), nil
}

func (m *memPersister) Save(_ context.Context, devices []models.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errDiskFull
	}

	m.saves++
	m.devices = append([]models.Device(nil), devices...)

	return nil
}

func (*memPersister) Close() error { return nil }

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "ipv4", in: "192.168.1.10", want: "192.168.1.10"},
		{name: "ipv4 with spaces", in: "  10.0.0.1 ", want: "10.0.0.1"},
		{name: "ipv4 with port", in: "10.0.0.1:8080", want: "10.0.0.1:8080"},
		{name: "ipv6", in: "::1", want: "::1"},
		{name: "ipv6 expanded", in: "0:0:0:0:0:0:0:1", want: "::1"},
		{name: "bracketed ipv6 with port", in: "[::1]:22", want: "[::1]:22"},
		{name: "hostname lower-cased", in: "Router.LAN", want: "router.lan"},
		{name: "trailing dot", in: "nas.local.", want: "nas.local"},
		{name: "hostname with port", in: "printer:9100", want: "printer:9100"},
		{name: "empty", in: "", wantErr: true},
		{name: "underscore", in: "bad_host", wantErr: true},
		{name: "leading hyphen", in: "-bad.example", wantErr: true},
		{name: "port zero", in: "10.0.0.1:0", wantErr: true},
		{name: "port too large", in: "10.0.0.1:70000", wantErr: true},
		{name: "garbage port", in: "host:http", wantErr: true},
		{name: "double port", in: "10.0.0.1:80:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAddress)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_AddEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	r := New(logger.NewTestLogger(), nil)

	_, err := r.Add(ctx, models.Device{ID: "router", Address: "192.168.1.1"})
	require.NoError(t, err)

	_, err = r.Add(ctx, models.Device{ID: "router", Address: "192.168.1.2"})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = r.Add(ctx, models.Device{ID: "ROUTER", Address: "192.168.1.3"})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = r.Add(ctx, models.Device{ID: "switch", Address: " 192.168.1.1 "})
	require.ErrorIs(t, err, ErrDuplicateAddress)

	_, err = r.Add(ctx, models.Device{ID: "", Address: "192.168.1.9"})
	require.ErrorIs(t, err, ErrInvalidDevice)

	_, err = r.Add(ctx, models.Device{ID: "ap", Address: "not_valid"})
	require.ErrorIs(t, err, ErrInvalidAddress)

	assert.Equal(t, 1, r.Len())
}

func TestRegistry_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	r := New(logger.NewTestLogger(), nil)

	for _, d := range []models.Device{
		{ID: "c", Address: "10.0.0.3"},
		{ID: "a", Address: "10.0.0.1"},
		{ID: "b", Address: "10.0.0.2"},
	} {
		_, err := r.Add(ctx, d)
		require.NoError(t, err)
	}

	_, err := r.Remove(ctx, "a")
	require.NoError(t, err)

	devices, err := r.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "c", devices[0].ID)
	assert.Equal(t, "b", devices[1].ID)
}

func TestRegistry_SnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	r := New(logger.NewTestLogger(), nil)

	_, err := r.Add(ctx, models.Device{ID: "nas", Address: "10.0.0.5"})
	require.NoError(t, err)

	snapshot, err := r.Devices(ctx)
	require.NoError(t, err)

	_, err = r.Remove(ctx, "nas")
	require.NoError(t, err)

	snapshot[0].Label = "changed"

	require.Len(t, snapshot, 1)
	assert.Equal(t, "nas", snapshot[0].ID)
	assert.Zero(t, r.Len())
}

func TestRegistry_Update(t *testing.T) {
	ctx := context.Background()
	r := New(logger.NewTestLogger(), nil)

	_, err := r.Add(ctx, models.Device{ID: "cam", Address: "10.0.0.7"})
	require.NoError(t, err)
	_, err = r.Add(ctx, models.Device{ID: "nvr", Address: "10.0.0.8"})
	require.NoError(t, err)

	// Keeping its own address is not a conflict.
	updated, err := r.Update(ctx, "cam", models.Device{ID: "cam", Address: "10.0.0.7", Label: "Front door"})
	require.NoError(t, err)
	assert.Equal(t, "Front door", updated.Label)

	_, err = r.Update(ctx, "cam", models.Device{ID: "cam", Address: "10.0.0.8"})
	require.ErrorIs(t, err, ErrDuplicateAddress)

	_, err = r.Update(ctx, "cam", models.Device{ID: "nvr", Address: "10.0.0.7"})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = r.Update(ctx, "missing", models.Device{ID: "missing", Address: "10.0.0.9"})
	require.ErrorIs(t, err, ErrDeviceNotFound)

	renamed, err := r.Update(ctx, "cam", models.Device{ID: "camera", Address: "10.0.0.7", ActuatorLinked: true})
	require.NoError(t, err)
	assert.True(t, renamed.ActuatorLinked)

	devices, err := r.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "camera", devices[0].ID)

	_, ok := r.Get("cam")
	assert.False(t, ok)
}

func TestRegistry_RemoveMissing(t *testing.T) {
	r := New(logger.NewTestLogger(), nil)

	_, err := r.Remove(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestRegistry_LoadSeedsFromConfigWhenStoreEmpty(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	r := New(logger.NewTestLogger(), p)

	seed := []models.Device{
		{ID: "router", Address: "192.168.1.1", ActuatorLinked: true},
		{ID: "nas", Address: "NAS.lan"},
	}

	require.NoError(t, r.Load(ctx, seed))

	devices, err := r.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "nas.lan", devices[1].Address)
	assert.Equal(t, 1, p.saves)
	assert.Len(t, p.devices, 2)
}

func TestRegistry_LoadPrefersStore(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{devices: []models.Device{{ID: "stored", Address: "10.1.1.1"}}}
	r := New(logger.NewTestLogger(), p)

	require.NoError(t, r.Load(ctx, []models.Device{{ID: "seed", Address: "10.2.2.2"}}))

	_, ok := r.Get("stored")
	assert.True(t, ok)

	_, ok = r.Get("seed")
	assert.False(t, ok)
	assert.Zero(t, p.saves)
}

func TestRegistry_LoadRejectsDuplicateSeed(t *testing.T) {
	r := New(logger.NewTestLogger(), nil)

	err := r.Load(context.Background(), []models.Device{
		{ID: "a", Address: "10.0.0.1"},
		{ID: "b", Address: "10.0.0.1"},
	})
	require.ErrorIs(t, err, ErrDuplicateAddress)
}

func TestRegistry_PersistFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	r := New(logger.NewTestLogger(), p)

	_, err := r.Add(ctx, models.Device{ID: "a", Address: "10.0.0.1"})
	require.NoError(t, err)

	p.fail = true

	_, err = r.Add(ctx, models.Device{ID: "b", Address: "10.0.0.2"})
	require.ErrorIs(t, err, errDiskFull)

	_, err = r.Remove(ctx, "a")
	require.ErrorIs(t, err, errDiskFull)

	devices, err := r.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "a", devices[0].ID)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := New(logger.NewTestLogger(), nil)

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func(n int) {
			defer wg.Done()

			_, _ = r.Add(ctx, models.Device{ID: "dev" + string(rune('a'+n%26)), Address: "10.0.0.1"})
		}(i)

		go func() {
			defer wg.Done()

			_, _ = r.Devices(ctx)
		}()
	}

	wg.Wait()

	// Every add used the same address, so exactly one wins.
	assert.Equal(t, 1, r.Len())
}
