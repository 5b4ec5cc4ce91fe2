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

// Package logger is the zerolog-backed logging surface of netmon.
package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is what components depend on. Derived loggers from With or
// WithComponent are plain zerolog values and do not track SetDebug.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) zerolog.Logger
	SetDebug(debug bool)
}

type zlog struct {
	l    zerolog.Logger
	base zerolog.Level
}

// FromZerolog wraps an existing zerolog logger. Its current level is the one
// SetDebug(false) restores.
func FromZerolog(l zerolog.Logger) Logger {
	return &zlog{l: l, base: l.GetLevel()}
}

// NewWriterLogger writes JSON lines to w at level, for tests that inspect
// output.
func NewWriterLogger(w io.Writer, level zerolog.Level) Logger {
	return FromZerolog(zerolog.New(w).Level(level))
}

// NewTestLogger discards everything.
func NewTestLogger() Logger {
	return FromZerolog(zerolog.New(io.Discard).Level(zerolog.Disabled))
}

func (z *zlog) Debug() *zerolog.Event { return z.l.Debug() }
func (z *zlog) Info() *zerolog.Event  { return z.l.Info() }
func (z *zlog) Warn() *zerolog.Event  { return z.l.Warn() }
func (z *zlog) Error() *zerolog.Event { return z.l.Error() }
func (z *zlog) With() zerolog.Context { return z.l.With() }

func (z *zlog) WithComponent(component string) zerolog.Logger {
	return z.l.With().Str("component", component).Logger()
}

func (z *zlog) SetDebug(debug bool) {
	if z.base == zerolog.Disabled {
		return
	}

	if debug {
		z.l = z.l.Level(zerolog.DebugLevel)
		return
	}

	z.l = z.l.Level(z.base)
}
