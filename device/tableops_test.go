/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package device

import (
	"context"
	"errors"
	"testing"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"

	"github.com/go-p4rt/p4rtd/encode"
	"github.com/go-p4rt/p4rtd/p4info"
)

// fakeCapability records the arguments of the last TableEntryAdd/Delete
// call so TableOps's validation and passthrough can be asserted
// without a real device back end.
type fakeCapability struct {
	lastTableID     uint32
	lastMatchKey    []byte
	lastActionID    uint32
	lastActionData  []byte
	lastOverwrite   bool
	deletedHandle   uint64
	nextHandle      uint64
}

func (f *fakeCapability) Write(context.Context, *p4v1.WriteRequest) error { return nil }
func (f *fakeCapability) Read(context.Context, *p4v1.ReadRequest, func(*p4v1.ReadResponse) error) error {
	return nil
}
func (f *fakeCapability) PipelineConfigSet(p4v1.SetForwardingPipelineConfigRequest_Action, *p4v1.ForwardingPipelineConfig) error {
	return nil
}
func (f *fakeCapability) PipelineConfigGet() *p4v1.ForwardingPipelineConfig { return nil }
func (f *fakeCapability) P4Info() *p4configv1.P4Info                        { return nil }
func (f *fakeCapability) PacketOutSend(*p4v1.PacketOut) error               { return nil }
func (f *fakeCapability) RegisterPacketInCallback(PacketInFunc)             {}

func (f *fakeCapability) TableEntryAdd(tableID uint32, matchKey []byte, actionID uint32, actionData []byte, overwrite bool) (uint64, error) {
	f.lastTableID = tableID
	f.lastMatchKey = matchKey
	f.lastActionID = actionID
	f.lastActionData = actionData
	f.lastOverwrite = overwrite
	f.nextHandle++
	return f.nextHandle, nil
}

func (f *fakeCapability) TableEntryDelete(tableID uint32, handle uint64) error {
	f.deletedHandle = handle
	return nil
}

func buildersFor(t *testing.T, tableID, actionID uint32) (*encode.MatchKeyBuffer, *encode.ActionDataBuffer) {
	oracle := p4info.New(&p4configv1.P4Info{
		Tables: []*p4configv1.Table{
			{
				Preamble:    &p4configv1.Preamble{Id: tableID},
				MatchFields: []*p4configv1.MatchField{{Id: 1, Bitwidth: 8}},
			},
		},
		Actions: []*p4configv1.Action{
			{
				Preamble: &p4configv1.Preamble{Id: actionID},
				Params:   []*p4configv1.Action_Param{{Id: 1, Bitwidth: 8}},
			},
		},
	})
	mk, err := encode.NewMatchKeyBuffer(oracle, tableID)
	if err != nil {
		t.Fatal(err)
	}
	if err := mk.SetExact(1, uint8(7)); err != nil {
		t.Fatal(err)
	}
	ad, err := encode.NewActionDataBuffer(oracle, actionID)
	if err != nil {
		t.Fatal(err)
	}
	if err := ad.SetArg(1, uint8(9)); err != nil {
		t.Fatal(err)
	}
	return mk, ad
}

func TestTableOpsEntryAddForwardsToCapability(t *testing.T) {
	mk, ad := buildersFor(t, 1, 10)
	cap := &fakeCapability{}
	ops := NewTableOps(cap, 1)

	handle, err := ops.EntryAdd(mk, 10, ad, false)
	if err != nil {
		t.Fatal(err)
	}
	if handle != 1 {
		t.Errorf("handle = %d, want 1", handle)
	}
	if cap.lastTableID != 1 || cap.lastActionID != 10 || cap.lastOverwrite {
		t.Errorf("capability saw tableID=%d actionID=%d overwrite=%v, want 1, 10, false",
			cap.lastTableID, cap.lastActionID, cap.lastOverwrite)
	}
}

// Invariant 4
func TestTableOpsEntryAddRejectsTableMismatch(t *testing.T) {
	mk, ad := buildersFor(t, 1, 10)
	cap := &fakeCapability{}
	ops := NewTableOps(cap, 2) // bound to a different table than mk was built for

	_, err := ops.EntryAdd(mk, 10, ad, false)
	if !errors.Is(err, encode.ErrTableMismatch) {
		t.Errorf("err = %v, want ErrTableMismatch", err)
	}
}

func TestTableOpsEntryAddRejectsActionMismatch(t *testing.T) {
	mk, ad := buildersFor(t, 1, 10)
	cap := &fakeCapability{}
	ops := NewTableOps(cap, 1)

	_, err := ops.EntryAdd(mk, 11, ad, false) // ad was built for action 10
	if !errors.Is(err, encode.ErrActionMismatch) {
		t.Errorf("err = %v, want ErrActionMismatch", err)
	}
}

func TestTableOpsEntryDeletePassesThrough(t *testing.T) {
	cap := &fakeCapability{}
	ops := NewTableOps(cap, 1)
	if err := ops.EntryDelete(42); err != nil {
		t.Fatal(err)
	}
	if cap.deletedHandle != 42 {
		t.Errorf("deletedHandle = %d, want 42", cap.deletedHandle)
	}
}
