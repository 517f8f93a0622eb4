/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

package gnmisvc

import (
	"context"
	"testing"

	"github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/go-p4rt/p4rtd/gnmicfg"
)

func TestGetAndSetRoundTripThroughManager(t *testing.T) {
	facade := New(gnmicfg.NewManager())

	path := &gnmi.Path{Elem: []*gnmi.PathElem{{Name: "system"}, {Name: "hostname"}}}
	_, err := facade.Set(context.Background(), &gnmi.SetRequest{
		Update: []*gnmi.Update{
			{Path: path, Val: &gnmi.TypedValue{Value: &gnmi.TypedValue_StringVal{StringVal: "leaf1"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := facade.Get(context.Background(), &gnmi.GetRequest{Path: []*gnmi.Path{path}})
	if err != nil {
		t.Fatal(err)
	}
	updates := resp.GetNotification()[0].GetUpdate()
	if len(updates) != 1 || updates[0].GetVal().GetStringVal() != "leaf1" {
		t.Fatalf("Get after Set returned %v, want one update with value %q", updates, "leaf1")
	}
}

func TestCapabilitiesIsUnimplemented(t *testing.T) {
	facade := New(gnmicfg.NewManager())
	_, err := facade.Capabilities(context.Background(), &gnmi.CapabilityRequest{})
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("Capabilities returned %v, want Unimplemented", err)
	}
}

func TestSubscribeIsUnimplemented(t *testing.T) {
	facade := New(gnmicfg.NewManager())
	err := facade.Subscribe(nil)
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("Subscribe returned %v, want Unimplemented", err)
	}
}
