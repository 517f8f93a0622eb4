/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package p4rtsvc implements the P4Runtime gRPC service: unary RPCs
// forward to the DeviceRegistry/DeviceCapability pair, and
// StreamChannel forwards to the stream package's multiplexer.
package p4rtsvc

import (
	"context"

	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/go-p4rt/p4rtd/device"
	"github.com/go-p4rt/p4rtd/stream"
)

// Facade implements p4v1.P4RuntimeServer.
type Facade struct {
	p4v1.UnimplementedP4RuntimeServer

	registry *device.Registry
	mux      *stream.Mux
	fanout   *stream.Fanout
}

// New binds a facade to the registry it dispatches to and the
// multiplexer its StreamChannel RPC delegates to.
func New(registry *device.Registry, mux *stream.Mux, fanout *stream.Fanout) *Facade {
	return &Facade{registry: registry, mux: mux, fanout: fanout}
}

func noPipelineConfig(deviceID uint64) error {
	return status.Errorf(codes.FailedPrecondition, "no forwarding pipeline config set for device %d", deviceID)
}

// Write forwards to the addressed device, failing with
// FailedPrecondition if no pipeline has ever been configured for it.
func (f *Facade) Write(ctx context.Context, req *p4v1.WriteRequest) (*p4v1.WriteResponse, error) {
	cap, ok := f.registry.Get(req.GetDeviceId())
	if !ok {
		return nil, noPipelineConfig(req.GetDeviceId())
	}
	if err := cap.Write(ctx, req); err != nil {
		return nil, err
	}
	return &p4v1.WriteResponse{}, nil
}

// Read streams back matching entities from the addressed device.
func (f *Facade) Read(req *p4v1.ReadRequest, rpc p4v1.P4Runtime_ReadServer) error {
	cap, ok := f.registry.Get(req.GetDeviceId())
	if !ok {
		return noPipelineConfig(req.GetDeviceId())
	}
	return cap.Read(rpc.Context(), req, rpc.Send)
}

// SetForwardingPipelineConfig lazily creates the device's capability,
// installs the config, and registers the fanout as the device's
// packet-in sink once the install succeeds.
func (f *Facade) SetForwardingPipelineConfig(ctx context.Context, req *p4v1.SetForwardingPipelineConfigRequest) (*p4v1.SetForwardingPipelineConfigResponse, error) {
	cap := f.registry.GetOrCreate(req.GetDeviceId())
	if err := cap.PipelineConfigSet(req.GetAction(), req.GetConfig()); err != nil {
		return nil, err
	}
	cap.RegisterPacketInCallback(f.fanout.OnPacketIn)
	return &p4v1.SetForwardingPipelineConfigResponse{}, nil
}

// GetForwardingPipelineConfig returns the addressed device's current
// configuration.
func (f *Facade) GetForwardingPipelineConfig(ctx context.Context, req *p4v1.GetForwardingPipelineConfigRequest) (*p4v1.GetForwardingPipelineConfigResponse, error) {
	cap, ok := f.registry.Get(req.GetDeviceId())
	if !ok {
		return nil, noPipelineConfig(req.GetDeviceId())
	}
	return &p4v1.GetForwardingPipelineConfigResponse{Config: cap.PipelineConfigGet()}, nil
}

// StreamChannel delegates entirely to the multiplexer.
func (f *Facade) StreamChannel(rpc p4v1.P4Runtime_StreamChannelServer) error {
	return f.mux.HandleStreamChannel(rpc)
}

// Capabilities is not implemented; dispatch to it is out of this
// repository's scope.
func (f *Facade) Capabilities(ctx context.Context, req *p4v1.CapabilitiesRequest) (*p4v1.CapabilitiesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "Capabilities is not implemented")
}
