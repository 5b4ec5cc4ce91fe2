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
	"os"
	"strings"
)

// Environment overrides, checked in order. The NETMON_ names win so a host
// running several services can target netmon alone.
var (
	levelVars  = []string{"NETMON_LOG_LEVEL", "LOG_LEVEL"}
	debugVars  = []string{"NETMON_DEBUG", "DEBUG"}
	outputVars = []string{"NETMON_LOG_OUTPUT", "LOG_OUTPUT"}
	formatVars = []string{"NETMON_LOG_TIME_FORMAT", "LOG_TIME_FORMAT"}
)

// Config is the "logging" block of the netmon config file.
type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	TimeFormat string `json:"time_format"`
}

// DefaultConfig is used when the config file has no logging block.
func DefaultConfig() *Config {
	c := &Config{Level: "info", Output: "stdout"}
	c.ApplyEnv()

	return c
}

// ApplyEnv overrides file values with any set environment variable.
func (c *Config) ApplyEnv() {
	if v, ok := lookup(levelVars); ok {
		c.Level = v
	}

	if v, ok := lookup(debugVars); ok {
		c.Debug = parseBool(v)
	}

	if v, ok := lookup(outputVars); ok {
		c.Output = v
	}

	if v, ok := lookup(formatVars); ok {
		c.TimeFormat = v
	}
}

func lookup(keys []string) (string, bool) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, true
		}
	}

	return "", false
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
