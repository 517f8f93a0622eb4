/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package p4rtsvc

import (
	"context"
	"testing"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/go-p4rt/p4rtd/device"
	"github.com/go-p4rt/p4rtd/stream"
)

type fakeCapability struct {
	pipelineConfig    *p4v1.ForwardingPipelineConfig
	writeErr          error
	lastWrite         *p4v1.WriteRequest
	registeredCB      device.PacketInFunc
}

func (f *fakeCapability) Write(ctx context.Context, req *p4v1.WriteRequest) error {
	f.lastWrite = req
	return f.writeErr
}
func (f *fakeCapability) Read(ctx context.Context, req *p4v1.ReadRequest, emit func(*p4v1.ReadResponse) error) error {
	return emit(&p4v1.ReadResponse{Entities: []*p4v1.Entity{{}}})
}
func (f *fakeCapability) PipelineConfigSet(action p4v1.SetForwardingPipelineConfigRequest_Action, config *p4v1.ForwardingPipelineConfig) error {
	f.pipelineConfig = config
	return nil
}
func (f *fakeCapability) PipelineConfigGet() *p4v1.ForwardingPipelineConfig { return f.pipelineConfig }
func (f *fakeCapability) P4Info() *p4configv1.P4Info                       { return nil }
func (f *fakeCapability) PacketOutSend(*p4v1.PacketOut) error              { return nil }
func (f *fakeCapability) RegisterPacketInCallback(cb device.PacketInFunc)  { f.registeredCB = cb }
func (f *fakeCapability) TableEntryAdd(uint32, []byte, uint32, []byte, bool) (uint64, error) {
	return 0, nil
}
func (f *fakeCapability) TableEntryDelete(uint32, uint64) error { return nil }

func TestWriteFailsWithoutPipelineConfig(t *testing.T) {
	registry := device.NewRegistry(func(uint64) device.Capability { return &fakeCapability{} })
	facade := New(registry, nil, nil)

	_, err := facade.Write(context.Background(), &p4v1.WriteRequest{DeviceId: 1})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("Write on unconfigured device returned %v, want FailedPrecondition", err)
	}
}

func TestSetForwardingPipelineConfigRegistersFanout(t *testing.T) {
	cap := &fakeCapability{}
	registry := device.NewRegistry(func(uint64) device.Capability { return cap })
	roster := stream.NewRoster()
	fanout := stream.NewFanout(roster)
	facade := New(registry, nil, fanout)

	cfg := &p4v1.ForwardingPipelineConfig{}
	_, err := facade.SetForwardingPipelineConfig(context.Background(), &p4v1.SetForwardingPipelineConfigRequest{
		DeviceId: 1,
		Config:   cfg,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cap.pipelineConfig != cfg {
		t.Error("SetForwardingPipelineConfig did not install the config on the capability")
	}
	if cap.registeredCB == nil {
		t.Error("SetForwardingPipelineConfig did not register the fanout as the packet-in callback")
	}
}

func TestWriteForwardsToCapabilityOnceConfigured(t *testing.T) {
	cap := &fakeCapability{}
	registry := device.NewRegistry(func(uint64) device.Capability { return cap })
	facade := New(registry, nil, stream.NewFanout(stream.NewRoster()))

	facade.SetForwardingPipelineConfig(context.Background(), &p4v1.SetForwardingPipelineConfigRequest{
		DeviceId: 1,
		Config:   &p4v1.ForwardingPipelineConfig{},
	})

	req := &p4v1.WriteRequest{DeviceId: 1}
	if _, err := facade.Write(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if cap.lastWrite != req {
		t.Error("Write did not forward the request to the device's capability")
	}
}

func TestGetForwardingPipelineConfigFailsWithoutConfig(t *testing.T) {
	registry := device.NewRegistry(func(uint64) device.Capability { return &fakeCapability{} })
	facade := New(registry, nil, nil)

	_, err := facade.GetForwardingPipelineConfig(context.Background(), &p4v1.GetForwardingPipelineConfigRequest{DeviceId: 5})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("GetForwardingPipelineConfig on unconfigured device returned %v, want FailedPrecondition", err)
	}
}

func TestCapabilitiesIsUnimplemented(t *testing.T) {
	facade := New(nil, nil, nil)
	_, err := facade.Capabilities(context.Background(), &p4v1.CapabilitiesRequest{})
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("Capabilities returned %v, want Unimplemented", err)
	}
}
