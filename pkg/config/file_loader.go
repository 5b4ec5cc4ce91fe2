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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// maxConfigBytes bounds a config document; anything larger is not a netmon
// config.
const maxConfigBytes = 1 << 20

var (
	errConfigTooLarge = errors.New("config document too large")
	errUnsetVariable  = errors.New("config references unset environment variable")
)

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// FileConfigLoader loads configuration from a local JSON file. String values
// may reference the environment as ${NAME}; a reference to an unset variable
// is an error rather than an empty string.
type FileConfigLoader struct{}

// Load implements ConfigLoader.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	return decodeJSON(path, data, dst)
}

// decodeJSON expands ${NAME} references and unmarshals data into dst. name
// only labels errors.
func decodeJSON(name string, data []byte, dst interface{}) error {
	if len(data) > maxConfigBytes {
		return fmt.Errorf("%w: %s is %d bytes", errConfigTooLarge, name, len(data))
	}

	expanded, err := expandEnv(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if err := json.Unmarshal(expanded, dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := position(expanded, syntaxErr.Offset)

			return fmt.Errorf("failed to parse JSON from '%s' at line %d, column %d: %w", name, line, col, err)
		}

		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", name, err)
	}

	return nil
}

func expandEnv(data []byte) ([]byte, error) {
	var missing []string

	out := envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		key := string(envRef.FindSubmatch(ref)[1])

		val, ok := os.LookupEnv(key)
		if !ok {
			missing = append(missing, key)
			return ref
		}

		// Keep the document valid JSON when the value holds quotes or
		// backslashes.
		quoted, _ := json.Marshal(val)

		return quoted[1 : len(quoted)-1]
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", errUnsetVariable, missing)
	}

	return out, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(prefix, '\n')

	return line, col
}
