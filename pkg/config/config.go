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

// Package config loads the netmon configuration and re-reads the monitor
// settings between poll cycles.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/netmon/pkg/logger"
	"github.com/carverauto/netmon/pkg/models"
)

const (
	DefaultListenAddr = ":8080"

	configSourceFile = "file"
	configSourceEnv  = "env"
	defaultEnvPrefix = "NETMON_"
)

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errInvalidConfigPtr    = errors.New("config must be a non-nil pointer")
)

// ConfigLoader reads a configuration into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configs that fill defaults and check values.
type Validator interface {
	Validate() error
}

// Config is the netmon process configuration.
type Config struct {
	ListenAddr  string                `json:"listen_addr"`
	Logging     *logger.Config        `json:"logging,omitempty"`
	Monitor     models.MonitorConfig  `json:"monitor"`
	Actuator    models.ActuatorConfig `json:"actuator"`
	Devices     []models.Device       `json:"devices,omitempty"`
	RegistryDB  string                `json:"registry_db,omitempty"`
	Metrics     models.MetricsConfig  `json:"metrics"`
	CORSOrigins []string              `json:"cors_origins,omitempty"`
}

// Validate fills defaults and validates nested sections.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	} else {
		c.Logging.ApplyEnv()
	}

	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	if c.Actuator.Type == "" {
		c.Actuator.Type = models.ActuatorTypeLog
	}

	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "netmon"
	}

	return nil
}

// ValidateConfig validates cfg if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// Loader picks a ConfigLoader from CONFIG_SOURCE ("file" by default, or
// "env" to read NETMON_CONFIG_JSON).
type Loader struct {
	defaultLoader ConfigLoader
	logger        logger.Logger
}

// NewLoader returns a loader that reads JSON files by default.
func NewLoader(log logger.Logger) *Loader {
	return &Loader{
		defaultLoader: &FileConfigLoader{},
		logger:        log,
	}
}

// LoadAndValidate loads path into cfg and validates it.
func (l *Loader) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if cfg == nil {
		return errInvalidConfigPtr
	}

	source := strings.ToLower(os.Getenv("CONFIG_SOURCE"))

	var loader ConfigLoader

	switch source {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = defaultEnvPrefix
		}

		loader = NewEnvConfigLoader(l.logger, prefix)
	case configSourceFile, "":
		loader = l.defaultLoader
	default:
		return fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}
