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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hako/durafmt"

	"github.com/carverauto/netmon/pkg/models"
	"github.com/carverauto/netmon/pkg/registry"
	"github.com/carverauto/netmon/pkg/version"
)

var errEmptyBody = errors.New("request body is required")

type healthResponse struct {
	Status string       `json:"status"`
	Build  version.Info `json:"build"`
}

func (*Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: version.Get()})
}

// getStatus joins the registry order with the latest health records. A
// device added since the last cycle is reported as unknown.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	snap := s.status.Snapshot(now)

	devices, err := s.registry.Devices(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list devices for status")
		writeError(w, "failed to list devices", http.StatusInternalServerError)

		return
	}

	resp := StatusResponse{
		Devices:              make([]DeviceStatus, 0, len(devices)),
		AggregateOnline:      snap.AggregateOnline,
		SecondsUntilNextPoll: snap.SecondsUntilNextPoll,
		NextPollIn:           durafmt.Parse(time.Duration(snap.SecondsUntilNextPoll) * time.Second).LimitFirstN(2).String(),
		NextPoll:             optionalTime(snap.NextPoll),
		LastCycle:            optionalTime(snap.LastCycle),
		Actuator:             "unknown",
		Timestamp:            snap.Timestamp,
	}

	for i := range devices {
		d := &devices[i]

		rec, tracked := snap.Devices[d.ID]
		if !tracked {
			// Not yet seen by the poll loop, so it cannot count as online.
			resp.AggregateOnline = false
		}

		switch rec.State {
		case models.StateOnline:
			resp.Online++
		case models.StateOffline:
			resp.Offline++
		case models.StateUnknown:
			resp.Unknown++
		}

		resp.Devices = append(resp.Devices, deviceStatus(d, &rec))
	}

	if s.actuator != nil {
		if level, ok := s.actuator.Level(); ok {
			resp.Actuator = level.String()
		}
	}

	if s.scheduler != nil {
		resp.Phase = s.scheduler.Phase().String()
	}

	writeJSON(w, http.StatusOK, resp)
}

func deviceStatus(d *models.Device, rec *models.HealthRecord) DeviceStatus {
	ds := DeviceStatus{
		ID:                  d.ID,
		Address:             d.Address,
		Label:               d.DisplayName(),
		ActuatorLinked:      d.ActuatorLinked,
		State:               rec.State,
		ConsecutiveFailures: rec.ConsecutiveFailures,
		Degraded:            rec.Degraded(),
		LastSuccess:         rec.LastSuccess,
		LastChecked:         optionalTime(rec.LastChecked),
	}

	if rec.LastLatency != nil {
		ms := float64(*rec.LastLatency) / float64(time.Millisecond)
		ds.LatencyMs = &ms
	}

	return ds
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.Devices(r.Context())
	if err != nil {
		writeError(w, "failed to list devices", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	d, ok := s.registry.Get(id)
	if !ok {
		writeError(w, "device not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) addDevice(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDevice(w, r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := s.registry.Add(r.Context(), req.device())
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	req, err := decodeDevice(w, r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The id may be omitted from the body on update.
	if req.ID == "" {
		req.ID = id
	}

	d, err := s.registry.Update(r.Context(), id, req.device())
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) removeDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	d, err := s.registry.Remove(r.Context(), id)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func decodeDevice(w http.ResponseWriter, r *http.Request) (*DeviceRequest, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, errEmptyBody
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req DeviceRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, registry.ErrDuplicateID), errors.Is(err, registry.ErrDuplicateAddress):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, registry.ErrInvalidDevice), errors.Is(err, registry.ErrInvalidAddress):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error().Err(err).Msg("Device registry update failed")
		writeError(w, "failed to update device registry", http.StatusInternalServerError)
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	})
}
