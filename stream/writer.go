/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package stream

import (
	"sync"

	"github.com/golang/glog"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

type writerState int

const (
	writerCreated writerState = iota
	writerCanWrite
	writerMustWait
)

// sender is the subset of the generated StreamChannel server stream
// a Writer needs; satisfied by p4v1.P4Runtime_StreamChannelServer.
type sender interface {
	Send(*p4v1.StreamMessageResponse) error
}

// Writer is the tri-state {Created, CanWrite, MustWait} side of one
// StreamChannel connection. grpc-go streams are not safe for
// concurrent Send calls, so at most one Write is ever in flight: a
// send arriving while the previous one is still outstanding is
// dropped rather than queued.
type Writer struct {
	mu    sync.Mutex
	state writerState
	out   sender
	label string // for logging only
}

func newWriter(out sender, label string) *Writer {
	return &Writer{out: out, state: writerCreated, label: label}
}

// activate drives Created -> CanWrite. It must be called exactly
// once, before the Writer is published to the roster, so that a
// fanout observing it through the roster never finds it in Created.
func (w *Writer) activate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == writerCreated {
		w.state = writerCanWrite
	}
}

// send posts packet asynchronously if the Writer is currently
// writable, and drops it otherwise. The actual stream.Send runs on a
// dedicated goroutine so the caller -- typically a fanout iterating a
// roster snapshot -- never blocks on network I/O.
func (w *Writer) send(packet *p4v1.PacketIn) {
	w.mu.Lock()
	if w.state != writerCanWrite {
		w.mu.Unlock()
		return
	}
	w.state = writerMustWait
	w.mu.Unlock()

	go func() {
		err := w.out.Send(&p4v1.StreamMessageResponse{
			Update: &p4v1.StreamMessageResponse_Packet{Packet: packet},
		})
		w.mu.Lock()
		w.state = writerCanWrite
		w.mu.Unlock()
		if err != nil && glog.V(1) {
			glog.Infof("stream: %s: packet-in write failed: %s", w.label, err)
		}
	}()
}
