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

// Package actuator drives the binary relay from the offline state of the
// linked devices.
package actuator

//go:generate mockgen -destination=mock_actuator.go -package=actuator github.com/carverauto/netmon/pkg/actuator Actuator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
)

// Level is the output level of the actuator.
type Level uint8

const (
	Off Level = iota
	On
)

func (l Level) String() string {
	if l == On {
		return "on"
	}

	return "off"
}

func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

var (
	errUnknownType  = errors.New("unknown actuator type")
	errPathRequired = errors.New("actuator path is required")
)

// Actuator sets the physical output level.
type Actuator interface {
	SetLevel(ctx context.Context, level Level) error
}

// New builds the actuator described by cfg. An empty type selects the log
// actuator.
func New(cfg *models.ActuatorConfig, log logger.Logger) (Actuator, error) {
	switch strings.ToLower(cfg.Type) {
	case "", models.ActuatorTypeLog:
		return NewLogActuator(log), nil
	case models.ActuatorTypeFile:
		if cfg.Path == "" {
			return nil, errPathRequired
		}

		return NewFileActuator(cfg.Path, cfg.ActiveLow), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownType, cfg.Type)
	}
}
