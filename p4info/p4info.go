/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package p4info indexes a compiled P4Info message so the encoder and the
// service facade can answer bit-width, byte0-mask and ordinal-index
// questions about match fields and action parameters without re-scanning
// the proto on every lookup.
package p4info

import (
	"fmt"
	"io/ioutil"

	"github.com/golang/protobuf/proto"
	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"
)

// FieldDescriptor is the immutable per-field metadata the encoder needs:
// identifier, bit-width, byte0-mask and the field's ordinal index within
// its table or action.
type FieldDescriptor struct {
	ID        uint32
	Name      string
	Bitwidth  int
	Byte0Mask byte
	Index     int
}

// Bytes returns ceil(Bitwidth/8), the number of bytes the field's wire
// representation occupies.
func (f *FieldDescriptor) Bytes() int {
	return (f.Bitwidth + 7) / 8
}

func byte0Mask(bitwidth int) byte {
	bytes := (bitwidth + 7) / 8
	rem := bitwidth - 8*(bytes-1)
	if rem <= 0 || rem >= 8 {
		return 0xFF
	}
	return byte(0xFF >> (8 - uint(rem)))
}

type table struct {
	fields     []FieldDescriptor
	fieldIndex map[uint32]int
}

type action struct {
	params     []FieldDescriptor
	paramIndex map[uint32]int
}

// Oracle is the read-only metadata surface backing the match-key and
// action-data encoders: per-field bit-width, byte0-mask and
// field-to-index mapping, and the analogous action-parameter queries.
type Oracle struct {
	info    *p4configv1.P4Info
	tables  map[uint32]*table
	actions map[uint32]*action
}

// Load reads a P4Info text-proto file, the same format
// cisco-open-go-p4's utils.P4InfoLoad consumes.
func Load(fileName string) (*Oracle, error) {
	raw, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("p4info: reading %s: %w", fileName, err)
	}
	var info p4configv1.P4Info
	if err := proto.UnmarshalText(string(raw), &info); err != nil {
		return nil, fmt.Errorf("p4info: parsing %s: %w", fileName, err)
	}
	return New(&info), nil
}

// New builds an Oracle over an already-parsed P4Info message.
func New(info *p4configv1.P4Info) *Oracle {
	o := &Oracle{
		info:    info,
		tables:  make(map[uint32]*table, len(info.GetTables())),
		actions: make(map[uint32]*action, len(info.GetActions())),
	}
	for _, t := range info.GetTables() {
		id := t.GetPreamble().GetId()
		tt := &table{
			fields:     make([]FieldDescriptor, 0, len(t.GetMatchFields())),
			fieldIndex: make(map[uint32]int, len(t.GetMatchFields())),
		}
		for i, mf := range t.GetMatchFields() {
			bitwidth := int(mf.GetBitwidth())
			fd := FieldDescriptor{
				ID:        mf.GetId(),
				Name:      mf.GetName(),
				Bitwidth:  bitwidth,
				Byte0Mask: byte0Mask(bitwidth),
				Index:     i,
			}
			tt.fields = append(tt.fields, fd)
			tt.fieldIndex[mf.GetId()] = i
		}
		o.tables[id] = tt
	}
	for _, a := range info.GetActions() {
		id := a.GetPreamble().GetId()
		aa := &action{
			params:     make([]FieldDescriptor, 0, len(a.GetParams())),
			paramIndex: make(map[uint32]int, len(a.GetParams())),
		}
		for i, p := range a.GetParams() {
			bitwidth := int(p.GetBitwidth())
			fd := FieldDescriptor{
				ID:        p.GetId(),
				Name:      p.GetName(),
				Bitwidth:  bitwidth,
				Byte0Mask: byte0Mask(bitwidth),
				Index:     i,
			}
			aa.params = append(aa.params, fd)
			aa.paramIndex[p.GetId()] = i
		}
		o.actions[id] = aa
	}
	return o
}

// P4Info returns the underlying parsed message, e.g. for
// GetForwardingPipelineConfig responses.
func (o *Oracle) P4Info() *p4configv1.P4Info {
	return o.info
}

func (o *Oracle) table(tableID uint32) (*table, error) {
	t, ok := o.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("p4info: unknown table id %d", tableID)
	}
	return t, nil
}

func (o *Oracle) action(actionID uint32) (*action, error) {
	a, ok := o.actions[actionID]
	if !ok {
		return nil, fmt.Errorf("p4info: unknown action id %d", actionID)
	}
	return a, nil
}

// NumMatchFields returns the number of match fields declared on table_id.
func (o *Oracle) NumMatchFields(tableID uint32) (int, error) {
	t, err := o.table(tableID)
	if err != nil {
		return 0, err
	}
	return len(t.fields), nil
}

// MatchFieldInfo returns the descriptor of the index'th match field of
// table_id, in declaration order.
func (o *Oracle) MatchFieldInfo(tableID uint32, index int) (*FieldDescriptor, error) {
	t, err := o.table(tableID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.fields) {
		return nil, fmt.Errorf("p4info: table %d has no match field at index %d", tableID, index)
	}
	fd := t.fields[index]
	return &fd, nil
}

// MatchFieldIndex returns the ordinal index of field_id within table_id.
func (o *Oracle) MatchFieldIndex(tableID, fieldID uint32) (int, error) {
	t, err := o.table(tableID)
	if err != nil {
		return 0, err
	}
	idx, ok := t.fieldIndex[fieldID]
	if !ok {
		return 0, fmt.Errorf("p4info: table %d has no match field id %d", tableID, fieldID)
	}
	return idx, nil
}

// MatchField returns the descriptor for field_id within table_id.
func (o *Oracle) MatchField(tableID, fieldID uint32) (*FieldDescriptor, error) {
	idx, err := o.MatchFieldIndex(tableID, fieldID)
	if err != nil {
		return nil, err
	}
	return o.MatchFieldInfo(tableID, idx)
}

// NumActionParams returns the number of parameters declared on action_id.
func (o *Oracle) NumActionParams(actionID uint32) (int, error) {
	a, err := o.action(actionID)
	if err != nil {
		return 0, err
	}
	return len(a.params), nil
}

// ActionParamInfo returns the descriptor of the index'th parameter of
// action_id, in declaration order.
func (o *Oracle) ActionParamInfo(actionID uint32, index int) (*FieldDescriptor, error) {
	a, err := o.action(actionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(a.params) {
		return nil, fmt.Errorf("p4info: action %d has no param at index %d", actionID, index)
	}
	fd := a.params[index]
	return &fd, nil
}

// ActionParam returns the descriptor for param_id within action_id.
func (o *Oracle) ActionParam(actionID, paramID uint32) (*FieldDescriptor, error) {
	a, err := o.action(actionID)
	if err != nil {
		return nil, err
	}
	idx, ok := a.paramIndex[paramID]
	if !ok {
		return nil, fmt.Errorf("p4info: action %d has no param id %d", actionID, paramID)
	}
	fd := a.params[idx]
	return &fd, nil
}
