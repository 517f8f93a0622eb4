/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package server

import (
	"net"
	"sync"

	"github.com/golang/glog"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"

	"github.com/go-p4rt/p4rtd/stream"
)

// packetGenerator is a test-harness-only source of synthetic
// packet-in traffic: it builds one ICMP-over-IPv4 frame and
// re-submits copies through the fanout in a tight loop until stopped,
// standing in for a real device emitting packet-in events with
// nothing attached to the control plane to drive them.
type packetGenerator struct {
	fanout *stream.Fanout

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func newPacketGenerator(fanout *stream.Fanout) *packetGenerator {
	return &packetGenerator{fanout: fanout}
}

// generatorSrcIP/generatorDstIP name the endpoints of the synthetic
// echo request the generator replays; they never need to resolve to
// anything real.
var (
	generatorSrcIP = net.IP{10, 0, 0, 1}
	generatorDstIP = net.IP{10, 0, 0, 2}

	// generatorPayloadLen matches the payload size the original
	// device-side packet-in generator used to stress a StreamChannel.
	generatorPayloadLen = 1000
)

// buildEchoRequestFrame serializes an IPv4 ICMP echo request with an
// incrementing-byte payload of length payloadLen, the frame the
// packet-in generator loops. It is unaddressed at layer 2: the
// P4Runtime StreamChannel carries raw packet-in payloads, not Ethernet
// frames bound for a NIC.
func buildEchoRequestFrame(srcIP, dstIP net.IP, payloadLen int) []byte {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Protocol: layers.IPProtocolICMPv4,
	}
	icmp := &layers.ICMPv4{
		TypeCode: layers.ICMPv4TypeEchoRequest,
		Id:       0x159,
	}
	payload := make([]byte, payloadLen)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := gopacket.SerializeLayers(buf, opts, ip, icmp, gopacket.Payload(payload)); err != nil {
		glog.Fatalf("server: building synthetic packet-in frame: %s", err)
	}
	return buf.Bytes()
}

func (g *packetGenerator) start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	g.running = true
	g.stop = make(chan struct{})
	stop := g.stop

	frame := buildEchoRequestFrame(generatorSrcIP, generatorDstIP, generatorPayloadLen)
	packet := &p4v1.PacketIn{Payload: frame}

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				g.fanout.OnPacketIn(0, packet)
			}
		}
	}()
}

func (g *packetGenerator) halt() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return
	}
	close(g.stop)
	g.running = false
}
