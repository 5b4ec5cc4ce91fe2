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

package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
)

// ErrNoConfig is returned when no valid monitor configuration has ever been
// read.
var ErrNoConfig = errors.New("no monitor configuration available")

var restartTrigger = map[string]bool{"restart": true}

// FileProvider re-reads the monitor section of the config file on every
// call. An unreadable or invalid file keeps the last good values.
type FileProvider struct {
	path   string
	loader ConfigLoader
	logger logger.Logger

	mu      sync.Mutex
	last    *models.MonitorConfig
	lastErr string
}

// NewFileProvider returns a provider for path. initial, if non-nil, is used
// until the first successful read.
func NewFileProvider(path string, loader ConfigLoader, log logger.Logger, initial *models.MonitorConfig) *FileProvider {
	if loader == nil {
		loader = &FileConfigLoader{}
	}

	p := &FileProvider{
		path:   path,
		loader: loader,
		logger: log,
	}

	if initial != nil {
		c := cloneMonitor(*initial)
		p.last = &c
	}

	return p
}

// Current returns the monitor configuration for the next cycle.
func (p *FileProvider) Current(ctx context.Context) (models.MonitorConfig, error) {
	var doc struct {
		Monitor models.MonitorConfig `json:"monitor"`
	}

	err := p.loader.Load(ctx, p.path, &doc)
	if err == nil {
		err = doc.Monitor.Validate()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		if p.last == nil {
			return models.MonitorConfig{}, fmt.Errorf("%w: %w", ErrNoConfig, err)
		}

		if msg := err.Error(); msg != p.lastErr {
			p.lastErr = msg
			p.logger.Warn().Err(err).Str("path", p.path).Msg("Failed to reload monitor config, keeping previous values")
		}

		return cloneMonitor(*p.last), nil
	}

	p.lastErr = ""

	if p.last != nil {
		if changed := reloadedFields(p.last, &doc.Monitor); len(changed) > 0 {
			p.logger.Info().Strs("fields", changed).Msg("Monitor config reloaded")
		}

		if changed := FieldsChangedByTag(p.last, &doc.Monitor, "hot", restartTrigger); len(changed) > 0 {
			p.logger.Warn().Strs("fields", changed).Msg("Monitor config change requires a restart to take effect")
		}
	}

	next := cloneMonitor(doc.Monitor)
	p.last = &next

	return cloneMonitor(next), nil
}

// StaticProvider always returns the same configuration.
type StaticProvider struct {
	cfg models.MonitorConfig
}

// NewStaticProvider validates cfg and wraps it.
func NewStaticProvider(cfg models.MonitorConfig) (*StaticProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &StaticProvider{cfg: cloneMonitor(cfg)}, nil
}

func (s *StaticProvider) Current(context.Context) (models.MonitorConfig, error) {
	return cloneMonitor(s.cfg), nil
}

func cloneMonitor(c models.MonitorConfig) models.MonitorConfig {
	c.ActuatorDeviceIDs = slices.Clone(c.ActuatorDeviceIDs)

	return c
}
