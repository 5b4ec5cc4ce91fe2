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
	"bytes"
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/carverauto/netmon/pkg/models"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	protocolICMP     = 1
	protocolIPv6ICMP = 58
	maxReplySize     = 1500
)

var echoPayload = []byte("netmon-probe")

// ICMPProber sends one echo request and waits for the matching reply.
// Unprivileged mode uses datagram ICMP sockets (Linux ping_group_range);
// privileged mode needs CAP_NET_RAW.
type ICMPProber struct {
	timeout    time.Duration
	privileged bool
	id         int
	seq        atomic.Uint32
}

var _ Prober = (*ICMPProber)(nil)

func NewICMPProber(timeout time.Duration, privileged bool) *ICMPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &ICMPProber{
		timeout:    timeout,
		privileged: privileged,
		id:         os.Getpid() & 0xffff,
	}
}

func (p *ICMPProber) Probe(ctx context.Context, address string) models.ProbeResult {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	ip, err := resolve(ctx, hostOf(address))
	if err != nil {
		return unreachable
	}

	rtt, err := p.echo(ctx, ip)
	if err != nil {
		return unreachable
	}

	return models.ProbeResult{Reachable: true, Latency: rtt}
}

type icmpFamily struct {
	network  string
	listen   string
	protocol int
	request  icmp.Type
	reply    icmp.Type
}

func (p *ICMPProber) family(ip net.IP) icmpFamily {
	if ip.To4() != nil {
		f := icmpFamily{network: "udp4", listen: "0.0.0.0", protocol: protocolICMP,
			request: ipv4.ICMPTypeEcho, reply: ipv4.ICMPTypeEchoReply}
		if p.privileged {
			f.network = "ip4:icmp"
		}

		return f
	}

	f := icmpFamily{network: "udp6", listen: "::", protocol: protocolIPv6ICMP,
		request: ipv6.ICMPTypeEchoRequest, reply: ipv6.ICMPTypeEchoReply}
	if p.privileged {
		f.network = "ip6:ipv6-icmp"
	}

	return f
}

func (p *ICMPProber) echo(ctx context.Context, ip net.IP) (time.Duration, error) {
	fam := p.family(ip)

	conn, err := icmp.ListenPacket(fam.network, fam.listen)
	if err != nil {
		return 0, err
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return 0, err
		}
	}

	seq := int(p.seq.Add(1) & 0xffff)

	msg := icmp.Message{
		Type: fam.request,
		Code: 0,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: echoPayload},
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if !p.privileged {
		dst = &net.UDPAddr{IP: ip}
	}

	start := time.Now()

	if _, err := conn.WriteTo(wb, dst); err != nil {
		return 0, err
	}

	rb := make([]byte, maxReplySize)

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			return 0, err
		}

		rm, err := icmp.ParseMessage(fam.protocol, rb[:n])
		if err != nil {
			continue
		}

		if p.isReply(rm, fam.reply, seq) && peerIP(peer).Equal(ip) {
			return time.Since(start), nil
		}
	}
}

// isReply matches an echo reply to our request. Datagram sockets rewrite the
// identifier, so it is only compared in privileged mode.
func (p *ICMPProber) isReply(rm *icmp.Message, replyType icmp.Type, seq int) bool {
	if rm.Type != replyType {
		return false
	}

	body, ok := rm.Body.(*icmp.Echo)
	if !ok {
		return false
	}

	if body.Seq != seq || !bytes.Equal(body.Data, echoPayload) {
		return false
	}

	return !p.privileged || body.ID == p.id
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}
