/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package device hosts the DeviceCapability boundary, the process-wide
// device registry, and the TableOps validator that marries a
// match-key buffer and an action-data buffer into a single write
// against a device.
package device

import (
	"context"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// PacketInFunc is invoked by a Capability, on an arbitrary goroutine,
// whenever the underlying device emits a packet-in frame.
type PacketInFunc func(deviceID uint64, packet *p4v1.PacketIn)

// Capability is the per-device management surface assumed available
// as an opaque back end. Implementations may be backed by a real ASIC
// driver or, as in this repository's devicesim package, by an
// in-memory simulator.
type Capability interface {
	// Write applies a batch of table/entity updates.
	Write(ctx context.Context, req *p4v1.WriteRequest) error

	// Read streams entities matching req to emit. emit is called once
	// per ReadResponse chunk; Capability implementations may call it
	// more than once for large result sets.
	Read(ctx context.Context, req *p4v1.ReadRequest, emit func(*p4v1.ReadResponse) error) error

	// PipelineConfigSet installs a forwarding-pipeline configuration.
	PipelineConfigSet(action p4v1.SetForwardingPipelineConfigRequest_Action, config *p4v1.ForwardingPipelineConfig) error

	// PipelineConfigGet returns the currently installed configuration,
	// or nil if none has been set.
	PipelineConfigGet() *p4v1.ForwardingPipelineConfig

	// P4Info returns the P4Info message of the currently installed
	// pipeline, or nil if none has been set.
	P4Info() *p4configv1.P4Info

	// PacketOutSend injects a controller-originated frame into the
	// data plane.
	PacketOutSend(packet *p4v1.PacketOut) error

	// RegisterPacketInCallback arranges for cb to be invoked for every
	// packet-in frame the device subsequently emits.
	RegisterPacketInCallback(cb PacketInFunc)

	// TableEntryAdd inserts or overwrites a table entry built from raw
	// match-key and action-data buffers, returning an opaque handle.
	TableEntryAdd(tableID uint32, matchKey []byte, actionID uint32, actionData []byte, overwrite bool) (uint64, error)

	// TableEntryDelete removes a previously added entry.
	TableEntryDelete(tableID uint32, handle uint64) error
}
