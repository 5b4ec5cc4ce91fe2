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

// Package probe issues single reachability checks against device addresses.
package probe

//go:generate mockgen -destination=mock_prober.go -package=probe github.com/carverauto/netmon/pkg/probe Prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/carverauto/netmon/pkg/models"
)

const (
	ModeICMP = "icmp"
	ModeTCP  = "tcp"

	DefaultTimeout = 2 * time.Second
	defaultTCPPort = 80
)

var (
	// ErrUnknownMode is returned when no prober is registered for a mode.
	ErrUnknownMode  = errors.New("unknown probe mode")
	errEmptyAddress = errors.New("empty address")
	errNoAddresses  = errors.New("no addresses found")
)

// Prober performs one reachability check. Implementations never return an
// error: every failure mode collapses to an unreachable result.
type Prober interface {
	Probe(ctx context.Context, address string) models.ProbeResult
}

// Options configure a prober created through a Registry.
type Options struct {
	Timeout     time.Duration
	Privileged  bool
	DefaultPort int
}

// Creator builds a prober for a mode.
type Creator func(opts Options) (Prober, error)

// Registry maps probe modes to constructors.
type Registry interface {
	Register(mode string, creator Creator)
	New(mode string, opts Options) (Prober, error)
}

type proberRegistry struct {
	factories map[string]Creator
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return &proberRegistry{factories: make(map[string]Creator)}
}

// DefaultRegistry knows the icmp and tcp modes.
func DefaultRegistry() Registry {
	r := NewRegistry()

	r.Register(ModeICMP, func(opts Options) (Prober, error) {
		return NewICMPProber(opts.Timeout, opts.Privileged), nil
	})
	r.Register(ModeTCP, func(opts Options) (Prober, error) {
		return NewTCPProber(opts.Timeout, opts.DefaultPort), nil
	})

	return r
}

func (r *proberRegistry) Register(mode string, creator Creator) {
	r.factories[strings.ToLower(mode)] = creator
}

func (r *proberRegistry) New(mode string, opts Options) (Prober, error) {
	f, ok := r.factories[strings.ToLower(mode)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	return f(opts)
}

var unreachable = models.ProbeResult{}

// withTimeout bounds ctx by timeout, keeping an earlier parent deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

// hostOf strips an optional port from an address.
func hostOf(address string) string {
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}

	return strings.Trim(address, "[]")
}

func resolve(ctx context.Context, host string) (net.IP, error) {
	if host == "" {
		return nil, errEmptyAddress
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}

	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP, nil
		}
	}

	if len(addrs) > 0 {
		return addrs[0].IP, nil
	}

	return nil, fmt.Errorf("%w for %s", errNoAddresses, host)
}
