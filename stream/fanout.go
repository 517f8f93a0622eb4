/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package stream

import p4v1 "github.com/p4lang/p4runtime/go/p4/v1"

// Fanout bridges a DeviceCapability's packet-in callback -- which may
// fire on any of the device back end's own goroutines -- to every
// live client stream. Its method value satisfies device.PacketInFunc
// directly.
type Fanout struct {
	roster *Roster
}

// NewFanout binds a fanout to the roster it walks.
func NewFanout(roster *Roster) *Fanout {
	return &Fanout{roster: roster}
}

// OnPacketIn snapshots the roster and calls send on every Writer in
// the snapshot. The device id is not used for routing -- every
// connected client sees every device's packet-in traffic, per the
// roster being a single process-wide set rather than sharded by
// device -- but is kept in the signature to match the registered
// callback shape and for future per-device filtering.
func (f *Fanout) OnPacketIn(deviceID uint64, packet *p4v1.PacketIn) {
	_ = deviceID
	for _, w := range f.roster.Snapshot() {
		w.send(packet)
	}
}
