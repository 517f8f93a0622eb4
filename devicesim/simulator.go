/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package devicesim is a concrete, in-process device.Capability. It
// needs no real ASIC: table writes are translated through the match-
// key and action-data encoders exactly as a real device-management
// back end would, and stored in memory.
package devicesim

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"

	"github.com/go-p4rt/p4rtd/device"
	"github.com/go-p4rt/p4rtd/encode"
	"github.com/go-p4rt/p4rtd/p4info"
)

type entryRecord struct {
	matchKey   []byte
	actionID   uint32
	actionData []byte
}

// Simulator is a device.Capability backed by in-memory maps. It is
// the default DeviceCapability this repository wires into the
// DeviceRegistry when no real back end is configured.
type Simulator struct {
	id uint64

	pcMu           chan struct{} // binary semaphore; see lock/unlock
	oracle         *p4info.Oracle
	pipelineConfig *p4v1.ForwardingPipelineConfig

	entriesMu chan struct{} // binary semaphore; see lock/unlock
	entries   map[uint32]map[uint64]*entryRecord
	keyIndex  map[uint32]map[string]uint64
	protoByID map[uint32]map[uint64]*p4v1.TableEntry
	nextH     uint64

	cbMu chan struct{}
	cb   device.PacketInFunc
}

// New creates a Simulator for deviceID with no pipeline configured.
func New(deviceID uint64) *Simulator {
	return &Simulator{
		id:        deviceID,
		pcMu:      make(chan struct{}, 1),
		entriesMu: make(chan struct{}, 1),
		cbMu:      make(chan struct{}, 1),
		entries:   make(map[uint32]map[uint64]*entryRecord),
		keyIndex:  make(map[uint32]map[string]uint64),
		protoByID: make(map[uint32]map[uint64]*p4v1.TableEntry),
	}
}

// NewCapability adapts New to the factory signature DeviceRegistry
// expects.
func NewCapability(deviceID uint64) device.Capability {
	return New(deviceID)
}

func lock(ch chan struct{})   { ch <- struct{}{} }
func unlock(ch chan struct{}) { <-ch }

func (s *Simulator) currentOracle() (*p4info.Oracle, error) {
	lock(s.pcMu)
	defer unlock(s.pcMu)
	if s.oracle == nil {
		return nil, fmt.Errorf("devicesim: device %d has no forwarding pipeline config set", s.id)
	}
	return s.oracle, nil
}

// PipelineConfigSet installs a ForwardingPipelineConfig and rebuilds
// the P4Info oracle backing the encoder.
func (s *Simulator) PipelineConfigSet(action p4v1.SetForwardingPipelineConfigRequest_Action, config *p4v1.ForwardingPipelineConfig) error {
	if config.GetP4Info() == nil {
		return fmt.Errorf("devicesim: device %d: pipeline config has no P4Info", s.id)
	}
	oracle := p4info.New(config.GetP4Info())
	lock(s.pcMu)
	s.oracle = oracle
	s.pipelineConfig = config
	unlock(s.pcMu)
	if glog.V(1) {
		glog.Infof("devicesim: device %d: pipeline config set (action=%s)", s.id, action)
	}
	return nil
}

// PipelineConfigGet returns the currently installed configuration.
func (s *Simulator) PipelineConfigGet() *p4v1.ForwardingPipelineConfig {
	lock(s.pcMu)
	defer unlock(s.pcMu)
	return s.pipelineConfig
}

// P4Info returns the oracle's underlying message, or nil.
func (s *Simulator) P4Info() *p4configv1.P4Info {
	lock(s.pcMu)
	defer unlock(s.pcMu)
	if s.oracle == nil {
		return nil
	}
	return s.oracle.P4Info()
}

// Write translates each Update's protobuf TableEntry into calls
// against the match-key and action-data encoders and a TableOps
// validator, mirroring how a real device-management front end turns
// wire-level FieldMatch lists into the compact on-wire encoding.
func (s *Simulator) Write(_ context.Context, req *p4v1.WriteRequest) error {
	for _, upd := range req.GetUpdates() {
		if err := s.applyUpdate(upd); err != nil {
			if req.GetAtomicity() == p4v1.WriteRequest_CONTINUE_ON_ERROR {
				glog.Warningf("devicesim: device %d: update failed, continuing: %s", s.id, err)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Simulator) applyUpdate(upd *p4v1.Update) error {
	te := upd.GetEntity().GetTableEntry()
	if te == nil {
		return fmt.Errorf("devicesim: device %d: only TableEntry updates are supported", s.id)
	}
	oracle, err := s.currentOracle()
	if err != nil {
		return err
	}

	matchKey, err := buildMatchKey(oracle, te)
	if err != nil {
		return err
	}
	actionID := te.GetAction().GetAction().GetActionId()
	actionData, err := buildActionData(oracle, te.GetAction().GetAction())
	if err != nil {
		return err
	}

	ops := device.NewTableOps(s, te.TableId)

	switch upd.Type {
	case p4v1.Update_INSERT, p4v1.Update_MODIFY:
		handle, err := ops.EntryAdd(matchKey, actionID, actionData, upd.Type == p4v1.Update_MODIFY)
		if err != nil {
			return err
		}
		s.recordProto(te.TableId, handle, te)
		return nil
	case p4v1.Update_DELETE:
		handle, ok := s.lookupHandle(te.TableId, matchKey.Bytes())
		if !ok {
			return fmt.Errorf("devicesim: device %d: no entry matches delete key in table %d", s.id, te.TableId)
		}
		if err := ops.EntryDelete(handle); err != nil {
			return err
		}
		s.forgetProto(te.TableId, handle)
		return nil
	default:
		return fmt.Errorf("devicesim: device %d: unsupported update type %s", s.id, upd.Type)
	}
}

func buildMatchKey(oracle *p4info.Oracle, te *p4v1.TableEntry) (*encode.MatchKeyBuffer, error) {
	mk, err := encode.NewMatchKeyBuffer(oracle, te.TableId)
	if err != nil {
		return nil, err
	}
	for _, fm := range te.GetMatch() {
		switch t := fm.GetFieldMatchType().(type) {
		case *p4v1.FieldMatch_Exact_:
			if err := mk.SetExact(fm.FieldId, t.Exact.GetValue()); err != nil {
				return nil, err
			}
		case *p4v1.FieldMatch_Lpm:
			if err := mk.SetLPM(fm.FieldId, t.Lpm.GetValue(), int(t.Lpm.GetPrefixLen())); err != nil {
				return nil, err
			}
		case *p4v1.FieldMatch_Ternary_:
			if err := mk.SetTernary(fm.FieldId, t.Ternary.GetValue(), t.Ternary.GetMask()); err != nil {
				return nil, err
			}
		case *p4v1.FieldMatch_Optional_:
			if err := mk.SetExact(fm.FieldId, t.Optional.GetValue()); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("devicesim: field %d: unsupported match type", fm.FieldId)
		}
	}
	return mk, nil
}

func buildActionData(oracle *p4info.Oracle, action *p4v1.Action) (*encode.ActionDataBuffer, error) {
	ad, err := encode.NewActionDataBuffer(oracle, action.GetActionId())
	if err != nil {
		return nil, err
	}
	for _, p := range action.GetParams() {
		if err := ad.SetArg(p.ParamId, p.GetValue()); err != nil {
			return nil, err
		}
	}
	return ad, nil
}

// TableEntryAdd is the low-level Capability entry point: it stores
// raw, already-encoded match-key and action-data buffers, allocating
// a fresh handle unless overwrite replaces an entry with an identical
// key.
func (s *Simulator) TableEntryAdd(tableID uint32, matchKey []byte, actionID uint32, actionData []byte, overwrite bool) (uint64, error) {
	lock(s.entriesMu)
	defer unlock(s.entriesMu)

	key := string(matchKey)
	if s.keyIndex[tableID] == nil {
		s.keyIndex[tableID] = make(map[string]uint64)
		s.entries[tableID] = make(map[uint64]*entryRecord)
	}
	if handle, exists := s.keyIndex[tableID][key]; exists {
		if !overwrite {
			return 0, fmt.Errorf("devicesim: table %d already has an entry for this key", tableID)
		}
		s.entries[tableID][handle] = &entryRecord{
			matchKey:   append([]byte(nil), matchKey...),
			actionID:   actionID,
			actionData: append([]byte(nil), actionData...),
		}
		return handle, nil
	}

	s.nextH++
	handle := s.nextH
	s.keyIndex[tableID][key] = handle
	s.entries[tableID][handle] = &entryRecord{
		matchKey:   append([]byte(nil), matchKey...),
		actionID:   actionID,
		actionData: append([]byte(nil), actionData...),
	}
	return handle, nil
}

// TableEntryDelete removes the entry stored under handle.
func (s *Simulator) TableEntryDelete(tableID uint32, handle uint64) error {
	lock(s.entriesMu)
	defer unlock(s.entriesMu)
	rec, ok := s.entries[tableID][handle]
	if !ok {
		return fmt.Errorf("devicesim: table %d has no entry with handle %d", tableID, handle)
	}
	delete(s.entries[tableID], handle)
	delete(s.keyIndex[tableID], string(rec.matchKey))
	return nil
}

func (s *Simulator) lookupHandle(tableID uint32, matchKey []byte) (uint64, bool) {
	lock(s.entriesMu)
	defer unlock(s.entriesMu)
	idx := s.keyIndex[tableID]
	if idx == nil {
		return 0, false
	}
	h, ok := idx[string(matchKey)]
	return h, ok
}

func (s *Simulator) recordProto(tableID uint32, handle uint64, te *p4v1.TableEntry) {
	lock(s.entriesMu)
	defer unlock(s.entriesMu)
	if s.protoByID[tableID] == nil {
		s.protoByID[tableID] = make(map[uint64]*p4v1.TableEntry)
	}
	s.protoByID[tableID][handle] = te
}

func (s *Simulator) forgetProto(tableID uint32, handle uint64) {
	lock(s.entriesMu)
	defer unlock(s.entriesMu)
	delete(s.protoByID[tableID], handle)
}

// Read emits a single ReadResponse carrying every stored table entry
// matching the requested table ids (table id 0 in a request entity
// means "all tables", per P4Runtime convention).
func (s *Simulator) Read(_ context.Context, req *p4v1.ReadRequest, emit func(*p4v1.ReadResponse) error) error {
	lock(s.entriesMu)
	wantAll := false
	wantTables := map[uint32]bool{}
	for _, e := range req.GetEntities() {
		te := e.GetTableEntry()
		if te == nil {
			continue
		}
		if te.TableId == 0 {
			wantAll = true
		} else {
			wantTables[te.TableId] = true
		}
	}

	var entities []*p4v1.Entity
	for tableID, byHandle := range s.protoByID {
		if !wantAll && !wantTables[tableID] {
			continue
		}
		for _, te := range byHandle {
			entities = append(entities, &p4v1.Entity{
				Entity: &p4v1.Entity_TableEntry{TableEntry: te},
			})
		}
	}
	unlock(s.entriesMu)

	return emit(&p4v1.ReadResponse{Entities: entities})
}

// PacketOutSend is a no-op in the simulator: there is no data plane
// to inject into. Real back ends transmit the frame out the port
// named by the packet's metadata.
func (s *Simulator) PacketOutSend(packet *p4v1.PacketOut) error {
	if glog.V(2) {
		glog.Infof("devicesim: device %d: packet-out %d bytes", s.id, len(packet.GetPayload()))
	}
	return nil
}

// RegisterPacketInCallback arranges for cb to receive every frame
// later passed to InjectPacketIn.
func (s *Simulator) RegisterPacketInCallback(cb device.PacketInFunc) {
	lock(s.cbMu)
	s.cb = cb
	unlock(s.cbMu)
}

// InjectPacketIn simulates a data-plane frame arriving at the
// controller. It is called by tests; the signal-driven test generator
// does not go through it but feeds the fanout directly. A real back end
// would call the registered callback directly from its own RX thread.
func (s *Simulator) InjectPacketIn(packet *p4v1.PacketIn) {
	lock(s.cbMu)
	cb := s.cb
	unlock(s.cbMu)
	if cb != nil {
		cb(s.id, packet)
	}
}
