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
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(&Config{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = ParseLevel(&Config{Level: "warn", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = ParseLevel(&Config{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	_, err = ParseLevel(&Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewZerolog(t *testing.T) {
	zl, err := NewZerolog(&Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.ErrorLevel, zl.GetLevel())

	_, err = NewZerolog(&Config{Level: "nope"})
	require.Error(t, err)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "trace")
	t.Setenv("DEBUG", "yes")
	t.Setenv("LOG_OUTPUT", "stderr")

	cfg := DefaultConfig()

	assert.Equal(t, "trace", cfg.Level)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestApplyEnv_NetmonPrefixWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NETMON_LOG_LEVEL", "error")

	cfg := &Config{Level: "info", Output: "console"}
	cfg.ApplyEnv()

	assert.Equal(t, "error", cfg.Level)
	assert.Equal(t, "console", cfg.Output, "unset variables keep file values")
}

func TestSetDebugRestoresConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer

	log := NewWriterLogger(&buf, zerolog.WarnLevel)

	log.SetDebug(true)
	log.Debug().Msg("debugging")

	log.SetDebug(false)
	log.Info().Msg("suppressed")
	log.Warn().Msg("kept")

	out := buf.String()
	assert.Contains(t, out, "debugging")
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "kept")
}

func TestTestLoggerIsSilent(t *testing.T) {
	log := NewTestLogger()

	assert.Equal(t, zerolog.Disabled, log.WithComponent("probe").GetLevel())

	log.SetDebug(true)
	assert.Equal(t, zerolog.Disabled, log.WithComponent("probe").GetLevel())
}
