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

	"github.com/carverauto/netmon/pkg/models"
)

// Persister stores the ordered device list. Save always receives the full
// list so implementations can replace their contents atomically.
type Persister interface {
	Load(ctx context.Context) ([]models.Device, error)
	Save(ctx context.Context, devices []models.Device) error
	Close() error
}

// Service is the device management surface used by the API.
type Service interface {
	Devices(ctx context.Context) ([]models.Device, error)
	Get(id string) (models.Device, bool)
	Add(ctx context.Context, d models.Device) (models.Device, error)
	Update(ctx context.Context, id string, d models.Device) (models.Device, error)
	Remove(ctx context.Context, id string) (models.Device, error)
}
