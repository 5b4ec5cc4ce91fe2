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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

func TestTCPProber_Reachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			_ = conn.Close()
		}
	}()

	p := NewTCPProber(time.Second, 0)

	res := p.Probe(context.Background(), ln.Addr().String())

	assert.True(t, res.Reachable)
	assert.Positive(t, res.Latency)
}

func TestTCPProber_ClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	res := NewTCPProber(500*time.Millisecond, 0).Probe(context.Background(), addr)

	assert.False(t, res.Reachable)
	assert.Zero(t, res.Latency)
}

func TestTCPProber_DefaultPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	port := ln.Addr().(*net.TCPAddr).Port

	p := NewTCPProber(time.Second, port)

	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), p.target("127.0.0.1"))
	assert.Equal(t, "10.0.0.1:22", p.target("10.0.0.1:22"))
	assert.Equal(t, "[::1]:"+strconv.Itoa(port), p.target("::1"))
	assert.Empty(t, p.target(""))
}

func TestProbers_EmptyAddressIsUnreachable(t *testing.T) {
	ctx := context.Background()

	assert.False(t, NewTCPProber(time.Second, 80).Probe(ctx, "").Reachable)
	assert.False(t, NewICMPProber(time.Second, false).Probe(ctx, "").Reachable)
}

func TestProbers_CancelledContextIsUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()

	assert.False(t, NewICMPProber(time.Second, false).Probe(ctx, "192.0.2.1").Reachable)
	assert.False(t, NewTCPProber(time.Second, 80).Probe(ctx, "192.0.2.1").Reachable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()

	p, err := reg.New("ICMP", Options{Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &ICMPProber{}, p)

	p, err = reg.New(ModeTCP, Options{DefaultPort: 443})
	require.NoError(t, err)
	require.IsType(t, &TCPProber{}, p)
	assert.Equal(t, 443, p.(*TCPProber).defaultPort)
	assert.Equal(t, DefaultTimeout, p.(*TCPProber).timeout)

	_, err = reg.New("snmp", Options{})
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestICMPProber_IsReply(t *testing.T) {
	p := NewICMPProber(time.Second, true)

	reply := &icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: p.id, Seq: 7, Data: echoPayload},
	}
	assert.True(t, p.isReply(reply, ipv4.ICMPTypeEchoReply, 7))
	assert.False(t, p.isReply(reply, ipv4.ICMPTypeEchoReply, 8))

	foreign := &icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: p.id + 1, Seq: 7, Data: echoPayload},
	}
	assert.False(t, p.isReply(foreign, ipv4.ICMPTypeEchoReply, 7))

	// datagram sockets rewrite the identifier
	unpriv := NewICMPProber(time.Second, false)
	assert.True(t, unpriv.isReply(foreign, ipv4.ICMPTypeEchoReply, 7))

	request := &icmp.Message{Type: ipv4.ICMPTypeEcho, Body: &icmp.Echo{ID: p.id, Seq: 7, Data: echoPayload}}
	assert.False(t, p.isReply(request, ipv4.ICMPTypeEchoReply, 7))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "10.0.0.1", hostOf("10.0.0.1"))
	assert.Equal(t, "10.0.0.1", hostOf("10.0.0.1:80"))
	assert.Equal(t, "::1", hostOf("[::1]:80"))
	assert.Equal(t, "router.lan", hostOf("router.lan"))
}
