/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package stream implements the StreamChannel multiplexer: the
// Reader/Writer state machines, the client roster, and the fanout
// that bridges device-originated packet-in callbacks to every live
// client. grpc-go already runs one goroutine per stream and
// multiplexes completions internally, so the per-connection state
// machines this package names are phases of that goroutine's loop
// and a dedicated per-write goroutine, rather than tags on a
// user-level completion queue.
package stream

import (
	"io"

	"github.com/golang/glog"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/go-p4rt/p4rtd/device"
)

// Mux owns the roster and the device registry a StreamChannel
// connection consults to route packet-out frames.
type Mux struct {
	roster   *Roster
	registry *device.Registry
}

// NewMux binds a multiplexer to the roster and registry it serves.
func NewMux(roster *Roster, registry *device.Registry) *Mux {
	return &Mux{roster: roster, registry: registry}
}

// HandleStreamChannel is the StreamChannel RPC handler. Its three
// phases are the Reader state machine's Processing, Reading, and
// Finished states: the Writer is constructed and driven to CanWrite
// (Processing), then the handler loops on Recv (Reading), and any
// return -- clean or not -- unregisters the Writer before the stream
// finishes (Finished). Roster removal strictly precedes the implicit
// Finish a returning handler triggers, so a fanout snapshot taken
// concurrently either sees this Writer or does not see it at all.
func (m *Mux) HandleStreamChannel(rpc p4v1.P4Runtime_StreamChannelServer) error {
	w := newWriter(rpc, "streamchannel")
	w.activate()
	m.roster.add(w)
	defer m.roster.remove(w)

	var deviceID uint64
	var haveDevice bool

	for {
		req, err := rpc.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if glog.V(1) {
				glog.Infof("stream: recv error, finishing: %s", err)
			}
			return nil
		}

		switch u := req.Update.(type) {
		case *p4v1.StreamMessageRequest_Arbitration:
			deviceID = u.Arbitration.GetDeviceId()
			haveDevice = true

		case *p4v1.StreamMessageRequest_Packet:
			if !haveDevice {
				continue
			}
			cap, ok := m.registry.Get(deviceID)
			if !ok {
				continue
			}
			if err := cap.PacketOutSend(u.Packet); err != nil {
				glog.Warningf("stream: device %d: packet-out failed: %s", deviceID, err)
			}

		case *p4v1.StreamMessageRequest_DigestAck:
			// Digest acknowledgements have no effect until digest
			// delivery itself is implemented; accepted and ignored.

		default:
			return status.Errorf(codes.Internal, "stream: device %d: protocol violation: unrecognized update kind", deviceID)
		}
	}
}
