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

// Package registry holds the ordered set of monitored devices and enforces
// id and address uniqueness on every mutation.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
)

var (
	ErrDuplicateID      = errors.New("device id already exists")
	ErrDuplicateAddress = errors.New("device address already exists")
	ErrDeviceNotFound   = errors.New("device not found")

	errPersist = errors.New("failed to persist devices")
)

// Registry is safe for concurrent use. Readers always receive copies, so a
// snapshot taken by the scheduler is unaffected by later mutations.
type Registry struct {
	mu        sync.RWMutex
	devices   []models.Device
	persister Persister
	logger    logger.Logger
}

var _ Service = (*Registry)(nil)

// New creates an empty registry. persister may be nil.
func New(log logger.Logger, persister Persister) *Registry {
	return &Registry{
		persister: persister,
		logger:    log,
	}
}

// Load fills the registry from the persister, or from seed when the
// persister is absent or empty. Seed devices are written back so the next
// start sees them.
func (r *Registry) Load(ctx context.Context, seed []models.Device) error {
	var stored []models.Device

	if r.persister != nil {
		var err error

		stored, err = r.persister.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load devices: %w", err)
		}
	}

	source := "store"
	devices := stored

	if len(stored) == 0 {
		source = "config"
		devices = seed
	}

	accepted := make([]models.Device, 0, len(devices))

	for _, d := range devices {
		nd, err := normalizeDevice(d)
		if err != nil {
			return fmt.Errorf("device %q: %w", d.ID, err)
		}

		if err := checkUnique(accepted, nd, ""); err != nil {
			return fmt.Errorf("device %q: %w", d.ID, err)
		}

		accepted = append(accepted, nd)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices = accepted

	if source == "config" && len(accepted) > 0 && r.persister != nil {
		if err := r.persister.Save(ctx, accepted); err != nil {
			return fmt.Errorf("%w: %w", errPersist, err)
		}
	}

	r.logger.Info().
		Int("devices", len(accepted)).
		Str("source", source).
		Msg("Device registry loaded")

	return nil
}

// Devices returns a copy of the current ordered device list.
func (r *Registry) Devices(_ context.Context) ([]models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Device, len(r.devices))
	copy(out, r.devices)

	return out, nil
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}

// Get looks up a device by id.
func (r *Registry) Get(id string) (models.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := indexOf(r.devices, id); i >= 0 {
		return r.devices[i], true
	}

	return models.Device{}, false
}

// Add appends a device after validating it and checking uniqueness.
func (r *Registry) Add(ctx context.Context, d models.Device) (models.Device, error) {
	nd, err := normalizeDevice(d)
	if err != nil {
		return models.Device{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkUnique(r.devices, nd, ""); err != nil {
		return models.Device{}, err
	}

	next := append(cloneDevices(r.devices), nd)

	if err := r.commit(ctx, next); err != nil {
		return models.Device{}, err
	}

	r.logger.Info().
		Str("device_id", nd.ID).
		Str("address", nd.Address).
		Bool("actuator_linked", nd.ActuatorLinked).
		Msg("Device added")

	return nd, nil
}

// Update replaces the device stored under id, keeping its position. The id
// itself may change as long as the new one is unused.
func (r *Registry) Update(ctx context.Context, id string, d models.Device) (models.Device, error) {
	nd, err := normalizeDevice(d)
	if err != nil {
		return models.Device{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.devices, id)
	if i < 0 {
		return models.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	if err := checkUnique(r.devices, nd, id); err != nil {
		return models.Device{}, err
	}

	next := cloneDevices(r.devices)
	next[i] = nd

	if err := r.commit(ctx, next); err != nil {
		return models.Device{}, err
	}

	r.logger.Info().
		Str("device_id", id).
		Str("new_id", nd.ID).
		Str("address", nd.Address).
		Msg("Device updated")

	return nd, nil
}

// Remove deletes the device with the given id and returns it.
func (r *Registry) Remove(ctx context.Context, id string) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.devices, id)
	if i < 0 {
		return models.Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	removed := r.devices[i]

	next := make([]models.Device, 0, len(r.devices)-1)
	next = append(next, r.devices[:i]...)
	next = append(next, r.devices[i+1:]...)

	if err := r.commit(ctx, next); err != nil {
		return models.Device{}, err
	}

	r.logger.Info().Str("device_id", id).Msg("Device removed")

	return removed, nil
}

// commit persists next and only then swaps it in; callers hold r.mu.
func (r *Registry) commit(ctx context.Context, next []models.Device) error {
	if r.persister != nil {
		if err := r.persister.Save(ctx, next); err != nil {
			r.logger.Error().Err(err).Msg("Failed to persist device registry")

			return fmt.Errorf("%w: %w", errPersist, err)
		}
	}

	r.devices = next

	return nil
}

// checkUnique reports a conflict between d and any device other than the
// one currently stored under skipID.
func checkUnique(devices []models.Device, d models.Device, skipID string) error {
	for _, existing := range devices {
		if skipID != "" && existing.ID == skipID {
			continue
		}

		if strings.EqualFold(existing.ID, d.ID) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}

		if existing.Address == d.Address {
			return fmt.Errorf("%w: %s (used by %s)", ErrDuplicateAddress, d.Address, existing.ID)
		}
	}

	return nil
}

func indexOf(devices []models.Device, id string) int {
	for i := range devices {
		if devices[i].ID == id {
			return i
		}
	}

	return -1
}

func cloneDevices(devices []models.Device) []models.Device {
	out := make([]models.Device, len(devices), len(devices)+1)
	copy(out, devices)

	return out
}
