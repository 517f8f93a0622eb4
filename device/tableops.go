/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package device

import "github.com/go-p4rt/p4rtd/encode"

// TableOps is a thin validator that marries a MatchKeyBuffer and an
// ActionDataBuffer into an add/delete against a Capability, bound to
// one table.
type TableOps struct {
	cap     Capability
	tableID uint32
}

// NewTableOps binds a validator to tableID and the device Capability
// that owns it.
func NewTableOps(cap Capability, tableID uint32) *TableOps {
	return &TableOps{cap: cap, tableID: tableID}
}

// EntryAdd fails with encode.ErrTableMismatch if matchKey was built
// for a different table, or encode.ErrActionMismatch if actionData
// was built for a different action than actionID. On success it
// forwards the raw buffers to the Capability and returns the handle.
func (t *TableOps) EntryAdd(matchKey *encode.MatchKeyBuffer, actionID uint32, actionData *encode.ActionDataBuffer, overwrite bool) (uint64, error) {
	if matchKey.TableID() != t.tableID {
		return 0, encode.ErrTableMismatch
	}
	if actionData.ActionID() != actionID {
		return 0, encode.ErrActionMismatch
	}
	return t.cap.TableEntryAdd(t.tableID, matchKey.Bytes(), actionID, actionData.Bytes(), overwrite)
}

// EntryDelete is a direct passthrough to the Capability.
func (t *TableOps) EntryDelete(handle uint64) error {
	return t.cap.TableEntryDelete(t.tableID, handle)
}
