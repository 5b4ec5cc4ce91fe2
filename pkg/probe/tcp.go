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

package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/carverauto/netmon/pkg/models"
)

// TCPProber treats a completed TCP handshake as reachability.
type TCPProber struct {
	timeout     time.Duration
	defaultPort int
	dialer      net.Dialer
}

var _ Prober = (*TCPProber)(nil)

func NewTCPProber(timeout time.Duration, defaultPort int) *TCPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if defaultPort <= 0 || defaultPort > 65535 {
		defaultPort = defaultTCPPort
	}

	return &TCPProber{timeout: timeout, defaultPort: defaultPort}
}

// Probe dials host:port, using the default port when the address has none.
func (p *TCPProber) Probe(ctx context.Context, address string) models.ProbeResult {
	target := p.target(address)
	if target == "" {
		return unreachable
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()

	conn, err := p.dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return unreachable
	}

	latency := time.Since(start)

	_ = conn.Close()

	return models.ProbeResult{Reachable: true, Latency: latency}
}

func (p *TCPProber) target(address string) string {
	if address == "" {
		return ""
	}

	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}

	return net.JoinHostPort(hostOf(address), strconv.Itoa(p.defaultPort))
}
