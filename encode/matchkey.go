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

// MatchKeyBuffer builds the match-key payload for one table: a prefix
// array of 2*F compact cells (value, companion) per match field,
// followed by a spill region for fields wider than the inline
// capacity. Once sized, the buffer is never reallocated; Reset rewinds
// the spill cursor rather than freeing anything.
type MatchKeyBuffer struct {
	oracle      *p4info.Oracle
	tableID     uint32
	numFields   int
	buf         []byte
	dataOffset  int
	spillCursor int
}

// NewMatchKeyBuffer sizes a match-key buffer for table_id from the
// P4Info oracle: 2*F*sizeof(cell) + the spilled bytes of every field
// wider than the inline capacity.
func NewMatchKeyBuffer(oracle *p4info.Oracle, tableID uint32) (*MatchKeyBuffer, error) {
	n, err := oracle.NumMatchFields(tableID)
	if err != nil {
		return nil, err
	}
	dataOffset := 2 * n * cellSize
	size := dataOffset
	for i := 0; i < n; i++ {
		fd, err := oracle.MatchFieldInfo(tableID, i)
		if err != nil {
			return nil, err
		}
		if fd.Bytes() > inlineCap {
			size += fd.Bytes()
		}
	}
	return &MatchKeyBuffer{
		oracle:      oracle,
		tableID:     tableID,
		numFields:   n,
		buf:         make([]byte, size),
		dataOffset:  dataOffset,
		spillCursor: dataOffset,
	}, nil
}

// TableID reports the table this buffer was sized for.
func (b *MatchKeyBuffer) TableID() uint32 { return b.tableID }

// Reset rewinds the spill cursor and clears the prefix cell array so a
// fresh sequence of Set* calls produces a buffer byte-identical to a
// freshly constructed one.
func (b *MatchKeyBuffer) Reset() {
	for i := range b.buf[:b.dataOffset] {
		b.buf[i] = 0
	}
	b.spillCursor = b.dataOffset
}

// Bytes returns the contiguous buffer for consumption by a
// DeviceCapability. The returned slice is a read-only view: callers
// must not retain it past the current operation.
func (b *MatchKeyBuffer) Bytes() []byte { return b.buf }

func (b *MatchKeyBuffer) writeCell(cellIndex int, data []byte) {
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

func (b *MatchKeyBuffer) readCell(fd *p4info.FieldDescriptor, cellIndex int) []byte {
	bytes := fd.Bytes()
	cv := cellAt(b.buf, cellIndex)
	if bytes <= inlineCap {
		return append([]byte(nil), cv.slotA()[:bytes]...)
	}
	off, length := cv.getSpillPointer()
	return append([]byte(nil), b.buf[off:off+length]...)
}

func (b *MatchKeyBuffer) fieldAndIndex(fieldID uint32) (*p4info.FieldDescriptor, int, error) {
	fd, err := b.oracle.MatchField(b.tableID, fieldID)
	if err != nil {
		return nil, 0, err
	}
	return fd, fd.Index, nil
}

// SetExact formats an exact-match value (an unsigned integer of <=64
// bits, or a raw byte string of the field's declared length) into the
// field's value cell.
func (b *MatchKeyBuffer) SetExact(fieldID uint32, value interface{}) error {
	fd, idx, err := b.fieldAndIndex(fieldID)
	if err != nil {
		return err
	}
	data, err := formatValue(fd, value)
	if err != nil {
		return err
	}
	b.writeCell(2*idx, data)
	return nil
}

// SetLPM formats a longest-prefix-match value the same way as
// SetExact, and stores prefixLength as the field's companion cell.
func (b *MatchKeyBuffer) SetLPM(fieldID uint32, value interface{}, prefixLength int) error {
	fd, idx, err := b.fieldAndIndex(fieldID)
	if err != nil {
		return err
	}
	data, err := formatValue(fd, value)
	if err != nil {
		return err
	}
	b.writeCell(2*idx, data)
	cellAt(b.buf, 2*idx+1).putInteger(uint64(prefixLength))
	return nil
}

// SetTernary formats two independent values -- the key and the mask --
// into the field's adjacent value and companion cells.
func (b *MatchKeyBuffer) SetTernary(fieldID uint32, value, mask interface{}) error {
	fd, idx, err := b.fieldAndIndex(fieldID)
	if err != nil {
		return err
	}
	keyData, err := formatValue(fd, value)
	if err != nil {
		return err
	}
	maskData, err := formatValue(fd, mask)
	if err != nil {
		return err
	}
	b.writeCell(2*idx, keyData)
	b.writeCell(2*idx+1, maskData)
	return nil
}

// FieldValue decodes the current value cell of field_id, interpreting
// the cell as inline or spilled purely from the field's declared
// width. Used by DeviceCapability implementations that want to
// interpret the otherwise-opaque buffer.
func (b *MatchKeyBuffer) FieldValue(fieldID uint32) ([]byte, error) {
	fd, idx, err := b.fieldAndIndex(fieldID)
	if err != nil {
		return nil, err
	}
	return b.readCell(fd, 2*idx), nil
}

// FieldMaskOrPrefix decodes the companion cell of field_id. asInteger
// selects the LPM prefix-length interpretation; otherwise the
// companion is decoded as a formatted ternary mask.
func (b *MatchKeyBuffer) FieldMaskOrPrefix(fieldID uint32, asInteger bool) (uint64, []byte, error) {
	fd, idx, err := b.fieldAndIndex(fieldID)
	if err != nil {
		return 0, nil, err
	}
	if asInteger {
		return cellAt(b.buf, 2*idx+1).getInteger(), nil, nil
	}
	return 0, b.readCell(fd, 2*idx+1), nil
}
