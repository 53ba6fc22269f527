// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshal_Deterministic(t *testing.T) {
	value := map[string]any{
		"zebra": 1,
		"apple": "two",
		"mango": []any{true, false},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("two marshals of the same value produced different bytes")
	}
}

func TestUnmarshal_DefaultMapType(t *testing.T) {
	data, err := Marshal(map[string]any{"nested": map[string]any{"key": "value"}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded top level is %T, want map[string]any", decoded)
	}
	if _, ok := top["nested"].(map[string]any); !ok {
		t.Fatalf("decoded nested value is %T, want map[string]any", top["nested"])
	}
}

func TestStreamRoundTrip(t *testing.T) {
	type message struct {
		Action string `cbor:"action"`
		Count  int    `cbor:"count"`
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for index := 0; index < 3; index++ {
		if err := encoder.Encode(message{Action: "launch-session", Count: index}); err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for index := 0; index < 3; index++ {
		var decoded message
		if err := decoder.Decode(&decoded); err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if decoded.Action != "launch-session" || decoded.Count != index {
			t.Errorf("Decode() = %+v, want action launch-session count %d", decoded, index)
		}
	}
}
