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

package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger from config, or from DefaultConfig when nil.
func New(config *Config) (Logger, error) {
	zl, err := NewZerolog(config)
	if err != nil {
		return nil, err
	}

	return FromZerolog(zl), nil
}

// NewZerolog returns a timestamped zerolog logger. Output is "stdout",
// "stderr" or "console" (human-readable, on stderr).
func NewZerolog(config *Config) (zerolog.Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := ParseLevel(config)
	if err != nil {
		return zerolog.Nop(), err
	}

	timeFormat := time.RFC3339
	if config.TimeFormat != "" {
		timeFormat = config.TimeFormat
	}

	var output io.Writer

	switch config.Output {
	case "stderr":
		output = os.Stderr
	case "console":
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
	default:
		output = os.Stdout
	}

	zerolog.TimeFieldFormat = timeFormat

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// ParseLevel resolves the configured level. Debug forces debug.
func ParseLevel(config *Config) (zerolog.Level, error) {
	if config.Debug {
		return zerolog.DebugLevel, nil
	}

	if config.Level == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	return level, nil
}
