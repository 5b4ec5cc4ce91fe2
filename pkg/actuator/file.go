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
	"fmt"
	"os"
)

// FileActuator writes "1" or "0" to a value file, typically a sysfs GPIO
// line. With activeLow the written value is inverted for relay boards that
// energize on a low signal.
type FileActuator struct {
	path      string
	activeLow bool
}

// NewFileActuator returns an actuator writing to path.
func NewFileActuator(path string, activeLow bool) *FileActuator {
	return &FileActuator{path: path, activeLow: activeLow}
}

func (f *FileActuator) SetLevel(ctx context.Context, level Level) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	high := level == On
	if f.activeLow {
		high = !high
	}

	value := []byte("0\n")
	if high {
		value = []byte("1\n")
	}

	if err := os.WriteFile(f.path, value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}

	return nil
}
