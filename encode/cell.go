/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package encode

import "encoding/binary"

// inlineCap is C: the inline byte capacity of a compact value cell.
// Fields whose ceil(bitwidth/8) is no larger than inlineCap are stored
// entirely within the cell; wider fields spill into the buffer's tail
// region and the cell instead carries an offset/length pair.
const inlineCap = 8

// cellSize is sizeof(cell): inlineCap bytes for the inline-or-spill-
// pointer slot, plus 8 bytes for the integer-companion slot (e.g. an
// LPM prefix length). Which slot is meaningful for a given cell is
// decided by the caller from field metadata, never by a tag stored in
// the cell itself.
const cellSize = inlineCap + 8

// cellView is a fixed-size window into a buffer's backing array. It
// carries no discriminant of its own: the same 16 bytes are read as
// inline value bytes, a spill offset/length pair, or a raw integer
// companion depending on what the caller already knows about the
// field.
type cellView []byte

func cellAt(buf []byte, index int) cellView {
	off := index * cellSize
	return cellView(buf[off : off+cellSize])
}

func (c cellView) slotA() []byte { return c[:inlineCap] }
func (c cellView) slotB() []byte { return c[inlineCap:] }

func (c cellView) putInteger(v uint64) {
	binary.LittleEndian.PutUint64(c.slotB(), v)
}

func (c cellView) getInteger() uint64 {
	return binary.LittleEndian.Uint64(c.slotB())
}

func (c cellView) putSpillPointer(offset, length uint32) {
	binary.LittleEndian.PutUint32(c.slotA()[0:4], offset)
	binary.LittleEndian.PutUint32(c.slotA()[4:8], length)
}

func (c cellView) getSpillPointer() (offset, length uint32) {
	offset = binary.LittleEndian.Uint32(c.slotA()[0:4])
	length = binary.LittleEndian.Uint32(c.slotA()[4:8])
	return
}

func (c cellView) putInline(data []byte) {
	// Clear any stale spill pointer/inline bytes from a previous
	// reset() cycle before writing the new value.
	for i := range c.slotA() {
		c.slotA()[i] = 0
	}
	copy(c.slotA(), data)
}
