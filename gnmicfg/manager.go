/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package gnmicfg holds the process-wide ConfigManager backing the
// gNMI Get and Set RPCs: an in-memory tree of typed values keyed by
// encoded path, using the real github.com/openconfig/gnmi/proto/gnmi
// message types so its wire behavior matches a genuine gNMI target.
package gnmicfg

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/openconfig/gnmi/proto/gnmi"
)

// Manager is a single, process-wide in-memory OpenConfig-shaped
// store. One instance backs every device's gNMI surface; the system
// does not model per-device configuration trees.
type Manager struct {
	mu     sync.Mutex
	values map[string]*gnmi.TypedValue
	paths  map[string]*gnmi.Path
}

// NewManager creates an empty ConfigManager.
func NewManager() *Manager {
	return &Manager{
		values: make(map[string]*gnmi.TypedValue),
		paths:  make(map[string]*gnmi.Path),
	}
}

func pathKey(path *gnmi.Path) string {
	var b strings.Builder
	if path.GetOrigin() != "" {
		b.WriteString(path.GetOrigin())
		b.WriteString(":")
	}
	for _, elem := range path.GetElem() {
		b.WriteString("/")
		b.WriteString(elem.GetName())
		if len(elem.GetKey()) > 0 {
			keys := make([]string, 0, len(elem.GetKey()))
			for k := range elem.GetKey() {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "[%s=%s]", k, elem.GetKey()[k])
			}
		}
	}
	return b.String()
}

func joinPath(prefix, path *gnmi.Path) *gnmi.Path {
	if prefix == nil {
		return path
	}
	if path == nil {
		return prefix
	}
	return &gnmi.Path{
		Origin: prefix.GetOrigin(),
		Target: prefix.GetTarget(),
		Elem:   append(append([]*gnmi.PathElem{}, prefix.GetElem()...), path.GetElem()...),
	}
}

// Get resolves every requested path (relative to req.Prefix) against
// the store. A requested path matches every stored entry whose
// encoded path equals it or continues it past a "/" element boundary,
// so a caller may query a subtree as well as a single leaf ("eth0"
// does not match "eth01").
func (m *Manager) Get(req *gnmi.GetRequest) (*gnmi.GetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var updates []*gnmi.Update
	for _, p := range req.GetPath() {
		full := joinPath(req.GetPrefix(), p)
		want := pathKey(full)
		for key, path := range m.paths {
			if key == want || strings.HasPrefix(key, want+"/") {
				updates = append(updates, &gnmi.Update{
					Path: path,
					Val:  m.values[key],
				})
			}
		}
	}

	return &gnmi.GetResponse{
		Notification: []*gnmi.Notification{
			{Update: updates},
		},
	}, nil
}

// Set applies deletes, then replaces, then updates, in that order --
// the order gNMI specifies for a single SetRequest -- and reports the
// operation applied to each path.
func (m *Manager) Set(req *gnmi.SetRequest) (*gnmi.SetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var results []*gnmi.UpdateResult

	for _, p := range req.GetDelete() {
		full := joinPath(req.GetPrefix(), p)
		key := pathKey(full)
		delete(m.values, key)
		delete(m.paths, key)
		results = append(results, &gnmi.UpdateResult{Path: p, Op: gnmi.UpdateResult_DELETE})
	}
	for _, u := range req.GetReplace() {
		m.apply(req.GetPrefix(), u)
		results = append(results, &gnmi.UpdateResult{Path: u.GetPath(), Op: gnmi.UpdateResult_REPLACE})
	}
	for _, u := range req.GetUpdate() {
		m.apply(req.GetPrefix(), u)
		results = append(results, &gnmi.UpdateResult{Path: u.GetPath(), Op: gnmi.UpdateResult_UPDATE})
	}

	return &gnmi.SetResponse{
		Prefix:   req.GetPrefix(),
		Response: results,
	}, nil
}

func (m *Manager) apply(prefix *gnmi.Path, u *gnmi.Update) {
	full := joinPath(prefix, u.GetPath())
	key := pathKey(full)
	m.values[key] = u.GetVal()
	m.paths[key] = full
}
