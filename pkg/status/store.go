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

// Package status holds the per-device health records shared between the
// poll loop and status readers.
package status

import (
	"math"
	"sync"
	"time"

	"github.com/carverauto/netmon/pkg/models"
)

// Store is a concurrency-safe map of device id to health record. The poll
// loop is the only writer; any number of readers may take snapshots. A
// single lock guards the whole map so a reader never sees a record whose
// fields come from different cycles.
type Store struct {
	mu        sync.RWMutex
	records   map[string]models.HealthRecord
	nextPoll  time.Time
	lastCycle time.Time
}

// Counts summarizes the verdicts held in the store.
type Counts struct {
	Total   int
	Online  int
	Offline int
	Unknown int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]models.HealthRecord)}
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (models.HealthRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return models.HealthRecord{}, false
	}

	return rec.Clone(), true
}

// Put stores rec under id.
func (s *Store) Put(id string, rec models.HealthRecord) {
	rec = rec.Clone()

	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()
}

// PutAll stores a batch of records in one critical section.
func (s *Store) PutAll(records map[string]models.HealthRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range records {
		s.records[id] = rec.Clone()
	}
}

// Sync makes the key set equal to ids: records for unknown ids are dropped
// and missing ids start out unknown with no failures. It returns the ids
// that were removed.
func (s *Store) Sync(ids []string) []string {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string

	for id := range s.records {
		if _, ok := want[id]; !ok {
			delete(s.records, id)

			removed = append(removed, id)
		}
	}

	for id := range want {
		if _, ok := s.records[id]; !ok {
			s.records[id] = models.HealthRecord{State: models.StateUnknown}
		}
	}

	return removed
}

// SetNextPoll publishes the deadline of the next cycle.
func (s *Store) SetNextPoll(t time.Time) {
	s.mu.Lock()
	s.nextPoll = t
	s.mu.Unlock()
}

// NextPoll returns the published deadline of the next cycle.
func (s *Store) NextPoll() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nextPoll
}

// SetLastCycle records when the last cycle finished updating.
func (s *Store) SetLastCycle(t time.Time) {
	s.mu.Lock()
	s.lastCycle = t
	s.mu.Unlock()
}

// Counts returns the verdict tallies.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{Total: len(s.records)}

	for _, rec := range s.records {
		switch rec.State {
		case models.StateOnline:
			c.Online++
		case models.StateOffline:
			c.Offline++
		case models.StateUnknown:
			c.Unknown++
		}
	}

	return c
}

// AggregateOnline reports whether every record is online. An empty store
// counts as online.
func (s *Store) AggregateOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return aggregate(s.records)
}

// Snapshot copies the store at now.
func (s *Store) Snapshot(now time.Time) models.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make(map[string]models.HealthRecord, len(s.records))
	for id, rec := range s.records {
		devices[id] = rec.Clone()
	}

	return models.StatusSnapshot{
		Devices:              devices,
		AggregateOnline:      aggregate(s.records),
		SecondsUntilNextPoll: SecondsUntil(s.nextPoll, now),
		NextPoll:             s.nextPoll,
		LastCycle:            s.lastCycle,
		Timestamp:            now,
	}
}

// SecondsUntil rounds the time left until deadline up to whole seconds,
// never going below zero.
func SecondsUntil(deadline, now time.Time) int {
	if deadline.IsZero() {
		return 0
	}

	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}

	return int(math.Ceil(left.Seconds()))
}

func aggregate(records map[string]models.HealthRecord) bool {
	for _, rec := range records {
		if !rec.Online() {
			return false
		}
	}

	return true
}
