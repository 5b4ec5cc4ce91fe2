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

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/carverauto/netmon/pkg/monitor ConfigProvider,DeviceSource

import (
	"context"
	"time"

	"github.com/carverauto/netmon/pkg/models"
)

// ConfigProvider supplies the monitor configuration, read once per cycle.
type ConfigProvider interface {
	Current(ctx context.Context) (models.MonitorConfig, error)
}

// DeviceSource supplies the ordered device list, read once per cycle.
type DeviceSource interface {
	Devices(ctx context.Context) ([]models.Device, error)
}

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer abstracts a one-shot timer.
type Timer interface {
	Chan() <-chan time.Time
	Stop() bool
}
