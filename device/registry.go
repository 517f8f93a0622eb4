/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package device

import "sync"

// Registry is the process-wide map from device id to its Capability
// handle. Entries are created on first SetForwardingPipelineConfig for
// that device (via GetOrCreate) and are never deleted during process
// lifetime.
type Registry struct {
	mu      sync.Mutex
	devices map[uint64]Capability
	factory func(deviceID uint64) Capability
}

// NewRegistry creates an empty registry. factory constructs a fresh
// Capability the first time a given device id is seen.
func NewRegistry(factory func(deviceID uint64) Capability) *Registry {
	return &Registry{
		devices: make(map[uint64]Capability),
		factory: factory,
	}
}

// Get returns the Capability for deviceID, or ok=false if no pipeline
// has ever been configured for that device.
func (r *Registry) Get(deviceID uint64) (Capability, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cap, found := r.devices[deviceID]
	return cap, found
}

// GetOrCreate returns the existing Capability for deviceID, or
// constructs and registers a new one.
func (r *Registry) GetOrCreate(deviceID uint64) Capability {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cap, found := r.devices[deviceID]; found {
		return cap
	}
	cap := r.factory(deviceID)
	r.devices[deviceID] = cap
	return cap
}
