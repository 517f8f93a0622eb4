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
	"bytes"
	"errors"
	"testing"

	p4configv1 "github.com/p4lang/p4runtime/go/p4/config/v1"

	"github.com/go-p4rt/p4rtd/p4info"
)

const (
	fieldTOS  = 1 // W=12, tests S1
	fieldPort = 2 // W=16, tests S2 (TooWide)
	fieldIPv4 = 3 // W=32, tests S3 (LPM)
	fieldMAC  = 4 // W=48, tests S4 (ternary)
	field64   = 5 // W=64, round-trip
)

const tableID = 100

func testOracle() *p4info.Oracle {
	return p4info.New(&p4configv1.P4Info{
		Tables: []*p4configv1.Table{
			{
				Preamble: &p4configv1.Preamble{Id: tableID},
				MatchFields: []*p4configv1.MatchField{
					{Id: fieldTOS, Name: "tos", Bitwidth: 12},
					{Id: fieldPort, Name: "port", Bitwidth: 16},
					{Id: fieldIPv4, Name: "ipv4", Bitwidth: 32},
					{Id: fieldMAC, Name: "mac", Bitwidth: 48},
					{Id: field64, Name: "wide", Bitwidth: 64},
				},
			},
		},
	})
}

// S1
func TestSetExactMasksLeadingByte(t *testing.T) {
	mk, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	if err := mk.SetExact(fieldTOS, uint16(0x0ABC)); err != nil {
		t.Fatal(err)
	}
	got, err := mk.FieldValue(fieldTOS)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x0A, 0xBC}) {
		t.Errorf("got %x, want 0a bc", got)
	}

	mk.Reset()
	if err := mk.SetExact(fieldTOS, uint16(0xFABC)); err != nil {
		t.Fatal(err)
	}
	got, _ = mk.FieldValue(fieldTOS)
	if !bytes.Equal(got, []byte{0x0A, 0xBC}) {
		t.Errorf("got %x, want 0a bc (top nibble masked)", got)
	}
}

// S2
func TestSetExactTooWide(t *testing.T) {
	mk, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	err = mk.SetExact(fieldPort, uint8(0x80))
	if !errors.Is(err, ErrTooWide) {
		t.Errorf("SetExact(fieldPort W=16, uint8) = %v, want ErrTooWide", err)
	}
}

// S3
func TestSetLPM(t *testing.T) {
	mk, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	if err := mk.SetLPM(fieldIPv4, uint32(0x0A000000), 8); err != nil {
		t.Fatal(err)
	}
	value, err := mk.FieldValue(fieldIPv4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(value, []byte{0x0A, 0x00, 0x00, 0x00}) {
		t.Errorf("LPM value = %x, want 0a 00 00 00", value)
	}
	prefix, _, err := mk.FieldMaskOrPrefix(fieldIPv4, true)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != 8 {
		t.Errorf("LPM prefix length = %d, want 8", prefix)
	}
}

// S4
func TestSetTernary(t *testing.T) {
	mk, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	key := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	mask := []byte{0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00}
	if err := mk.SetTernary(fieldMAC, key, mask); err != nil {
		t.Fatal(err)
	}
	gotKey, err := mk.FieldValue(fieldMAC)
	if err != nil || !bytes.Equal(gotKey, key) {
		t.Errorf("ternary key = %x, %v, want %x, nil", gotKey, err, key)
	}
	_, gotMask, err := mk.FieldMaskOrPrefix(fieldMAC, false)
	if err != nil || !bytes.Equal(gotMask, mask) {
		t.Errorf("ternary mask = %x, %v, want %x, nil", gotMask, err, mask)
	}
}

// Invariant 1 & round-trip: a 64-bit field round-trips through the
// big-endian encoding unmodified.
func TestSetExact64BitRoundTrip(t *testing.T) {
	mk, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	const v = uint64(0x0123456789ABCDEF)
	if err := mk.SetExact(field64, v); err != nil {
		t.Fatal(err)
	}
	data, err := mk.FieldValue(field64)
	if err != nil {
		t.Fatal(err)
	}
	var got uint64
	for _, b := range data {
		got = got<<8 | uint64(b)
	}
	if got != v {
		t.Errorf("round-trip = %#x, want %#x", got, v)
	}
}

// Round-trip: encoding the maximum representable value of a W-bit
// field yields byte0-mask followed by 0xFF bytes.
func TestSetExactMaxValue(t *testing.T) {
	mk, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	if err := mk.SetExact(fieldTOS, uint16(0xFFFF)); err != nil {
		t.Fatal(err)
	}
	got, err := mk.FieldValue(fieldTOS)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x0F, 0xFF}) {
		t.Errorf("max value = %x, want 0f ff", got)
	}
}

// Invariant 3: reset() then any sequence of set_* calls produces a
// buffer byte-identical to the same sequence on a fresh buffer.
func TestResetIsIdempotentWithFreshBuffer(t *testing.T) {
	fresh, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh.SetExact(fieldIPv4, uint32(0xC0A80001)); err != nil {
		t.Fatal(err)
	}

	reused, err := NewMatchKeyBuffer(testOracle(), tableID)
	if err != nil {
		t.Fatal(err)
	}
	if err := reused.SetLPM(fieldIPv4, uint32(0x0A000000), 8); err != nil {
		t.Fatal(err)
	}
	reused.Reset()
	if err := reused.SetExact(fieldIPv4, uint32(0xC0A80001)); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(fresh.Bytes(), reused.Bytes()) {
		t.Errorf("reset buffer %x != fresh buffer %x", reused.Bytes(), fresh.Bytes())
	}
}

// Fields wider than the inline capacity spill into the tail region;
// this exercises that path for a 128-bit-equivalent manual byte
// string field alongside the inline fields above.
func TestSpillRegionRoundTrip(t *testing.T) {
	oracle := p4info.New(&p4configv1.P4Info{
		Tables: []*p4configv1.Table{
			{
				Preamble: &p4configv1.Preamble{Id: tableID},
				MatchFields: []*p4configv1.MatchField{
					{Id: 1, Name: "wide", Bitwidth: 128},
				},
			},
		},
	})
	mk, err := NewMatchKeyBuffer(oracle, tableID)
	if err != nil {
		t.Fatal(err)
	}
	value := bytes.Repeat([]byte{0xAB}, 16)
	if err := mk.SetExact(1, value); err != nil {
		t.Fatal(err)
	}
	got, err := mk.FieldValue(1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("spilled value = %x, want %x", got, value)
	}
}
