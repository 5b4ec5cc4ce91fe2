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
	"os"

	"github.com/carverauto/netmon/pkg/logger"
)

var errNoEnvConfig = errors.New("environment configuration not set")

// EnvConfigLoader reads a complete JSON document from <prefix>CONFIG_JSON,
// for containers that have no writable config file.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a loader for the given variable prefix.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load ignores path.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	name := e.prefix + "CONFIG_JSON"

	raw := os.Getenv(name)
	if raw == "" {
		return fmt.Errorf("%w: %s", errNoEnvConfig, name)
	}

	if err := decodeJSON(name, []byte(raw), dst); err != nil {
		return err
	}

	if e.logger != nil {
		e.logger.Debug().Str("env", name).Msg("Loaded configuration from environment")
	}

	return nil
}
