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

package lifecycle

import (
	"github.com/carverauto/netmon/pkg/logger"
)

// CreateLogger builds the process root logger.
func CreateLogger(config *logger.Config) (logger.Logger, error) {
	return logger.New(config)
}

// CreateComponentLogger builds a root logger tagged with component.
func CreateComponentLogger(component string, config *logger.Config) (logger.Logger, error) {
	root, err := logger.New(config)
	if err != nil {
		return nil, err
	}

	return ForComponent(root, component), nil
}

// ForComponent derives a logger that stamps every line with component.
func ForComponent(parent logger.Logger, component string) logger.Logger {
	return logger.FromZerolog(parent.WithComponent(component))
}
