/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package gnmisvc implements the gNMI gRPC service. Get and Set
// forward to the process-wide gnmicfg.Manager; Capabilities and
// Subscribe are unimplemented.
package gnmisvc

import (
	"context"

	"github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/go-p4rt/p4rtd/gnmicfg"
)

// Facade implements gnmi.GNMIServer.
type Facade struct {
	gnmi.UnimplementedGNMIServer

	manager *gnmicfg.Manager
}

// New binds a facade to the ConfigManager it delegates to.
func New(manager *gnmicfg.Manager) *Facade {
	return &Facade{manager: manager}
}

// Get forwards to the ConfigManager.
func (f *Facade) Get(ctx context.Context, req *gnmi.GetRequest) (*gnmi.GetResponse, error) {
	return f.manager.Get(req)
}

// Set forwards to the ConfigManager.
func (f *Facade) Set(ctx context.Context, req *gnmi.SetRequest) (*gnmi.SetResponse, error) {
	return f.manager.Set(req)
}

// Capabilities is unimplemented.
func (f *Facade) Capabilities(ctx context.Context, req *gnmi.CapabilityRequest) (*gnmi.CapabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "Capabilities is not implemented")
}

// Subscribe is unimplemented; telemetry subscription semantics are a
// non-goal.
func (f *Facade) Subscribe(rpc gnmi.GNMI_SubscribeServer) error {
	return status.Error(codes.Unimplemented, "Subscribe is not implemented")
}
