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

package registry

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/carverauto/netmon/pkg/models"
)

var (
	ErrInvalidAddress = errors.New("invalid device address")
	ErrInvalidDevice  = errors.New("invalid device")

	errEmptyID      = errors.New("device id is required")
	errEmptyAddress = errors.New("device address is required")
	errBadPort      = errors.New("port out of range")
	errBadHostname  = errors.New("not a valid hostname")
)

const maxIDLength = 128

var hostnameLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// NormalizeAddress validates an IP literal or hostname, with an optional
// port, and returns it in canonical form. Hostnames are lower-cased and IP
// literals are re-rendered so that equivalent spellings compare equal.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, errEmptyAddress)
	}

	// A bare IPv6 literal has colons but no port.
	if ip := net.ParseIP(strings.Trim(address, "[]")); ip != nil {
		return ip.String(), nil
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = address, ""
	}

	host, err = normalizeHost(host)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidAddress, address, err)
	}

	if port == "" {
		return host, nil
	}

	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidAddress, address, errBadPort)
	}

	return net.JoinHostPort(host, strconv.Itoa(p)), nil
}

func normalizeHost(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || len(host) > 253 {
		return "", errBadHostname
	}

	for _, label := range strings.Split(host, ".") {
		if !hostnameLabel.MatchString(label) {
			return "", errBadHostname
		}
	}

	return host, nil
}

// normalizeDevice trims and validates a device before it is stored.
func normalizeDevice(d models.Device) (models.Device, error) {
	d.ID = strings.TrimSpace(d.ID)
	d.Label = strings.TrimSpace(d.Label)

	if d.ID == "" {
		return d, fmt.Errorf("%w: %w", ErrInvalidDevice, errEmptyID)
	}

	if len(d.ID) > maxIDLength {
		return d, fmt.Errorf("%w: id longer than %d characters", ErrInvalidDevice, maxIDLength)
	}

	addr, err := NormalizeAddress(d.Address)
	if err != nil {
		return d, err
	}

	d.Address = addr

	return d, nil
}
