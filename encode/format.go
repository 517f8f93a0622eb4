/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/go-p4rt/p4rtd/p4info"
)

// formatValue implements the formatting algorithm common to match-key
// and action-data fields: network byte order, big-endian left-justified
// truncation to the field's declared width, and byte0-mask application,
// for either an integer of known storage width or a raw byte string.
func formatValue(fd *p4info.FieldDescriptor, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case uint8:
		return formatUint(fd, uint64(v), 8)
	case uint16:
		return formatUint(fd, uint64(v), 16)
	case uint32:
		return formatUint(fd, uint64(v), 32)
	case uint64:
		return formatUint(fd, v, 64)
	case int8, int16, int32, int64, int:
		return nil, ErrSignedUnsupported
	case []byte:
		return formatBytes(fd, v)
	default:
		return nil, fmt.Errorf("encode: unsupported value type %T", value)
	}
}

func formatUint(fd *p4info.FieldDescriptor, v uint64, typeBits int) ([]byte, error) {
	if fd.Bitwidth > typeBits {
		return nil, ErrTooWide
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	bytes := fd.Bytes()
	data := append([]byte(nil), tmp[8-bytes:]...)
	data[0] &= fd.Byte0Mask
	return data, nil
}

func formatBytes(fd *p4info.FieldDescriptor, v []byte) ([]byte, error) {
	bytes := fd.Bytes()
	if len(v) != bytes {
		return nil, ErrWidthMismatch
	}
	data := append([]byte(nil), v...)
	data[0] &= fd.Byte0Mask
	return data, nil
}
