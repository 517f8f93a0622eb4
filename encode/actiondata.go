/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package encode

import "github.com/go-p4rt/p4rtd/p4info"

// ActionDataBuffer builds the action-argument payload for one action:
// one compact cell per parameter, indexed by the low-order byte of the
// parameter's identifier (a convention exported by the P4Info
// oracle's id allocation), followed by a spill region for parameters
// wider than the inline capacity.
type ActionDataBuffer struct {
	oracle      *p4info.Oracle
	actionID    uint32
	numCells    int
	buf         []byte
	dataOffset  int
	spillCursor int
}

// NewActionDataBuffer sizes an action-data buffer for action_id. Cells
// are indexed by a parameter's id low byte (paramID&0xff), not by its
// declaration ordinal, so the inline cell region must be sized off the
// largest id actually in play rather than the parameter count: P4Info
// numbers parameters 1..N, so an action whose highest-numbered
// parameter is its Nth would otherwise index one cell past a
// buffer sized for exactly N cells.
func NewActionDataBuffer(oracle *p4info.Oracle, actionID uint32) (*ActionDataBuffer, error) {
	n, err := oracle.NumActionParams(actionID)
	if err != nil {
		return nil, err
	}
	maxCell := -1
	for i := 0; i < n; i++ {
		fd, err := oracle.ActionParamInfo(actionID, i)
		if err != nil {
			return nil, err
		}
		if cell := int(fd.ID & 0xff); cell > maxCell {
			maxCell = cell
		}
	}
	numCells := maxCell + 1
	dataOffset := numCells * cellSize
	size := dataOffset
	for i := 0; i < n; i++ {
		fd, err := oracle.ActionParamInfo(actionID, i)
		if err != nil {
			return nil, err
		}
		if fd.Bytes() > inlineCap {
			size += fd.Bytes()
		}
	}
	return &ActionDataBuffer{
		oracle:      oracle,
		actionID:    actionID,
		numCells:    numCells,
		buf:         make([]byte, size),
		dataOffset:  dataOffset,
		spillCursor: dataOffset,
	}, nil
}

// ActionID reports the action this buffer was sized for.
func (b *ActionDataBuffer) ActionID() uint32 { return b.actionID }

// Reset rewinds the spill cursor and clears the cell array.
func (b *ActionDataBuffer) Reset() {
	for i := range b.buf[:b.dataOffset] {
		b.buf[i] = 0
	}
	b.spillCursor = b.dataOffset
}

// Bytes returns the contiguous buffer for consumption by a
// DeviceCapability.
func (b *ActionDataBuffer) Bytes() []byte { return b.buf }

func (b *ActionDataBuffer) writeCell(cellIndex int, data []byte) {
	cv := cellAt(b.buf, cellIndex)
	if len(data) <= inlineCap {
		cv.putInline(data)
		return
	}
	off := b.spillCursor
	copy(b.buf[off:off+len(data)], data)
	cv.putSpillPointer(uint32(off), uint32(len(data)))
	b.spillCursor += len(data)
}

func (b *ActionDataBuffer) readCell(fd *p4info.FieldDescriptor, cellIndex int) []byte {
	bytes := fd.Bytes()
	cv := cellAt(b.buf, cellIndex)
	if bytes <= inlineCap {
		return append([]byte(nil), cv.slotA()[:bytes]...)
	}
	off, length := cv.getSpillPointer()
	return append([]byte(nil), b.buf[off:off+length]...)
}

// SetArg formats a parameter value (an unsigned integer of <=64 bits,
// or a raw byte string of the parameter's declared length) into the
// parameter's cell.
func (b *ActionDataBuffer) SetArg(paramID uint32, value interface{}) error {
	fd, err := b.oracle.ActionParam(b.actionID, paramID)
	if err != nil {
		return err
	}
	data, err := formatValue(fd, value)
	if err != nil {
		return err
	}
	b.writeCell(int(paramID&0xff), data)
	return nil
}

// ArgValue decodes the cell for param_id.
func (b *ActionDataBuffer) ArgValue(paramID uint32) ([]byte, error) {
	fd, err := b.oracle.ActionParam(b.actionID, paramID)
	if err != nil {
		return nil, err
	}
	return b.readCell(fd, int(paramID&0xff)), nil
}
