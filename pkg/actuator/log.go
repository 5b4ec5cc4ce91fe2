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

package actuator

import (
	"context"

	"github.com/carverauto/netmon/pkg/logger"
)

// LogActuator only logs level changes. It is used when no relay is wired.
type LogActuator struct {
	logger logger.Logger
}

func NewLogActuator(log logger.Logger) *LogActuator {
	return &LogActuator{logger: log}
}

func (l *LogActuator) SetLevel(_ context.Context, level Level) error {
	l.logger.Info().Str("level", level.String()).Msg("Relay set")

	return nil
}
