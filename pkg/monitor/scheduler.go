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

// Package monitor runs the poll cycle: probe every device, fold the results
// into the status store and drive the actuator.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/remeh/sizedwaitgroup"

	"github.com/carverauto/netmon/pkg/actuator"
	"github.com/carverauto/netmon/pkg/health"
	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
	"github.com/carverauto/netmon/pkg/probe"
	"github.com/carverauto/netmon/pkg/status"
)

var (
	errCyclePanic     = errors.New("poll cycle panicked")
	errConfigRead     = errors.New("failed to read monitor config")
	errRegistryRead   = errors.New("failed to read device registry")
	errAlreadyStarted = errors.New("scheduler already started")
)

// Phase is the scheduler state.
type Phase uint32

const (
	PhaseIdle Phase = iota
	PhasePolling
	PhaseUpdating
	PhaseSleeping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePolling:
		return "polling"
	case PhaseUpdating:
		return "updating"
	case PhaseSleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("Phase(%d)", uint32(p))
	}
}

// CycleReport summarizes one completed cycle.
type CycleReport struct {
	ID       string
	Started  time.Time
	Deadline time.Time
	Duration time.Duration
	Devices  int
	Removed  []string
	Counts   status.Counts
	Events   map[string]health.Event
	Level    actuator.Level
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// Scheduler is the single writer of the status store and the only caller of
// the actuator controller.
type Scheduler struct {
	config     ConfigProvider
	devices    DeviceSource
	prober     probe.Prober
	store      *status.Store
	controller *actuator.Controller
	clock      Clock
	logger     logger.Logger

	phase    atomic.Uint32
	started  atomic.Bool
	fallback atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New wires a scheduler. It does nothing until Start or RunCycle.
func New(
	config ConfigProvider,
	devices DeviceSource,
	prober probe.Prober,
	store *status.Store,
	controller *actuator.Controller,
	log logger.Logger,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		config:     config,
		devices:    devices,
		prober:     prober,
		store:      store,
		controller: controller,
		clock:      realClock{},
		logger:     log,
		done:       make(chan struct{}),
	}

	s.fallback.Store(int64(models.DefaultFallbackDelay))

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Phase returns the current scheduler state.
func (s *Scheduler) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Scheduler) setPhase(p Phase) {
	s.phase.Store(uint32(p))
}

// Start implements the lifecycle.Service interface. The loop runs in the
// background until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errAlreadyStarted
	}

	s.logger.Info().Msg("Starting poll loop")

	s.wg.Add(1)

	go s.loop(ctx)

	return nil
}

// Stop implements the lifecycle.Service interface. It waits for the cycle in
// flight, whose probes end on their own timeouts, unless ctx expires first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	finished := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		s.logger.Info().Msg("Poll loop stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		report, err := s.safeCycle(ctx)

		var wait time.Duration

		if err != nil {
			recordCycleFailure(ctx)

			wait = time.Duration(s.fallback.Load())

			s.logger.Error().
				Err(err).
				Dur("retry_in", wait).
				Msg("Poll cycle failed")
		} else {
			// An overrun deadline gives a non-positive wait: start at once.
			wait = report.Deadline.Sub(s.clock.Now())
		}

		s.setPhase(PhaseSleeping)

		if !s.sleep(ctx, wait) {
			s.setPhase(PhaseIdle)
			return
		}

		s.setPhase(PhaseIdle)
	}
}

// sleep waits for d and reports whether the loop should continue.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-s.done:
			return false
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	t := s.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

// safeCycle runs one cycle and turns a panic into an error.
func (s *Scheduler) safeCycle(ctx context.Context) (report *CycleReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in poll cycle")

			report = nil
			err = fmt.Errorf("%w: %v", errCyclePanic, r)
		}
	}()

	return s.RunCycle(ctx)
}

// RunCycle executes one Idle -> Polling -> Updating pass. The device list is
// fixed for the whole cycle; registry changes are seen by the next one.
func (s *Scheduler) RunCycle(ctx context.Context) (*CycleReport, error) {
	cycleID := uuid.NewString()
	log := s.logger.With().Str("cycle_id", cycleID).Logger()

	cfg, err := s.config.Current(ctx)
	if err == nil {
		err = cfg.Validate()
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigRead, err)
	}

	s.fallback.Store(int64(cfg.FallbackDelay))

	devices, err := s.devices.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errRegistryRead, err)
	}

	started := s.clock.Now()
	deadline := started.Add(time.Duration(cfg.PollInterval))

	// Published before probing so readers get a countdown during the cycle.
	s.store.SetNextPoll(deadline)

	ids := make([]string, len(devices))
	for i := range devices {
		ids[i] = devices[i].ID
	}

	removed := s.store.Sync(ids)
	if len(removed) > 0 {
		log.Debug().Strs("devices", removed).Msg("Dropped health records of removed devices")
	}

	s.setPhase(PhasePolling)

	results := s.probeAll(ctx, &cfg, devices)

	s.setPhase(PhaseUpdating)

	report := &CycleReport{
		ID:       cycleID,
		Started:  started,
		Deadline: deadline,
		Devices:  len(devices),
		Removed:  removed,
		Events:   make(map[string]health.Event, len(devices)),
	}

	now := s.clock.Now()
	updates := make(map[string]models.HealthRecord, len(devices))
	entries := make([]actuator.Entry, 0, len(devices))

	for i := range devices {
		d := &devices[i]

		prev, _ := s.store.Get(d.ID)
		next, event := health.Transition(prev, results[i], cfg.OfflineThreshold, now)

		updates[d.ID] = next
		report.Events[d.ID] = event

		if !results[i].Reachable {
			recordProbeFailure(ctx, d.ID)
		}

		logTransition(&log, d, &next, event)

		entries = append(entries, actuator.Entry{
			DeviceID: d.ID,
			Linked:   cfg.ActuatorLinked(*d),
			Record:   next,
		})
	}

	s.store.PutAll(updates)

	report.Level = s.controller.Apply(ctx, entries)
	report.Counts = s.store.Counts()

	finished := s.clock.Now()
	s.store.SetLastCycle(finished)

	report.Duration = finished.Sub(started)

	recordCycleMetrics(ctx, report.Counts, report.Level, report.Duration)

	log.Debug().
		Int("devices", report.Devices).
		Int("online", report.Counts.Online).
		Int("offline", report.Counts.Offline).
		Str("actuator", report.Level.String()).
		Dur("took", report.Duration).
		Msg("Poll cycle complete")

	if report.Duration > time.Duration(cfg.PollInterval) {
		log.Warn().
			Dur("took", report.Duration).
			Dur("interval", time.Duration(cfg.PollInterval)).
			Msg("Poll cycle overran its interval")
	}

	return report, nil
}

// probeAll probes every device, sequentially when MaxConcurrency is 1. The
// result slice is index-aligned with devices.
func (s *Scheduler) probeAll(ctx context.Context, cfg *models.MonitorConfig, devices []models.Device) []models.ProbeResult {
	results := make([]models.ProbeResult, len(devices))
	timeout := time.Duration(cfg.ProbeTimeout)

	if cfg.MaxConcurrency <= 1 || len(devices) <= 1 {
		for i := range devices {
			results[i] = s.probeOne(ctx, &devices[i], timeout)
		}

		return results
	}

	swg := sizedwaitgroup.New(cfg.MaxConcurrency)

	for i := range devices {
		swg.Add()

		go func(i int) {
			defer swg.Done()

			results[i] = s.probeOne(ctx, &devices[i], timeout)
		}(i)
	}

	swg.Wait()

	return results
}

// probeOne isolates a single probe: a panic counts as unreachable and the
// probe outlives cancellation of ctx until its own timeout.
func (s *Scheduler) probeOne(ctx context.Context, d *models.Device, timeout time.Duration) (result models.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("device_id", d.ID).
				Interface("panic", r).
				Msg("Recovered from panic in probe")

			result = models.ProbeResult{}
		}
	}()

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	result = s.prober.Probe(pctx, d.Address)
	if !result.Reachable {
		result.Latency = 0

		s.logger.Debug().
			Str("device_id", d.ID).
			Str("address", d.Address).
			Msg("Probe failed")
	}

	return result
}
