/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package encode

import "errors"

// Encoder failures, returned to the caller before any buffer mutation
// becomes visible.
var (
	// ErrTooWide is returned when an integer value's declared storage
	// width is narrower than the field's bit-width.
	ErrTooWide = errors.New("encode: field bit-width exceeds value storage width")

	// ErrWidthMismatch is returned when a byte-string value's length
	// does not equal ceil(bitwidth/8).
	ErrWidthMismatch = errors.New("encode: byte value length does not match field width")

	// ErrSignedUnsupported is returned for any signed-integer input.
	ErrSignedUnsupported = errors.New("encode: signed integers are not supported")

	// ErrTableMismatch is returned by entry_add when the match-key
	// buffer was built for a different table.
	ErrTableMismatch = errors.New("encode: match-key buffer built for a different table")

	// ErrActionMismatch is returned by entry_add when the action-data
	// buffer was built for a different action.
	ErrActionMismatch = errors.New("encode: action-data buffer built for a different action")
)
