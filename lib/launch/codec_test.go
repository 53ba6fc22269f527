// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

// quietCodec returns a codec whose diagnostics are discarded, for
// tests that exercise the lenient decode paths on purpose.
func quietCodec() *Codec {
	codec := NewCodec()
	codec.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return codec
}

func sampleProfile() *Profile {
	return &Profile{
		Context: SessionContext{
			Username: "alice",
			Scope:    ScopeFromProjectID("proj1", "scope-42"),
		},
		Password:       "s3cr3t",
		ExecutablePath: "/opt/atelier/bin/session",
		Config: ProcessConfig{
			Args: []string{"--verify", "--www-port", "8787"},
			Environment: EnvironmentList{
				{Name: "ATELIER_SESSION", Value: "1"},
				{Name: "HOME", Value: "/home/alice"},
			},
			StdInput:          "run\n",
			StdStreamBehavior: StdStreamCapture,
			Limits: ResourceLimits{
				Priority:           5,
				MemoryLimitBytes:   1 << 30,
				StackLimitBytes:    8 << 20,
				UserProcessesLimit: 512,
				CPULimit:           4,
				NiceLimit:          19,
				FilesLimit:         4096,
				CPUAffinity:        CPUAffinity{true, false},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	codec := NewCodec()
	original := sampleProfile()

	result, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if len(result.Overflowed) != 0 {
		t.Fatalf("Encode() overflowed %v, want none", result.Overflowed)
	}

	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("Decode(Encode(p)) = %+v, want %+v", decoded, original)
	}
}

func TestEncode_SchemaFieldNames(t *testing.T) {
	codec := NewCodec()
	result, err := codec.Encode(sampleProfile())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(result.Document, &document); err != nil {
		t.Fatalf("document is not a JSON object: %v", err)
	}
	for _, field := range []string{"context", "password", "encryptionKey", "executablePath", "config"} {
		if _, ok := document[field]; !ok {
			t.Errorf("document missing top-level field %q", field)
		}
	}

	var config map[string]json.RawMessage
	if err := json.Unmarshal(document["config"], &config); err != nil {
		t.Fatalf("config is not a JSON object: %v", err)
	}
	for _, field := range []string{
		"args", "environment", "stdInput", "stdStreamBehavior",
		"priority", "memoryLimitBytes", "stackLimitBytes", "userProcessesLimit",
		"cpuLimit", "niceLimit", "filesLimit", "cpuAffinity",
	} {
		if _, ok := config[field]; !ok {
			t.Errorf("config missing field %q", field)
		}
	}
}

func TestEncode_LimitOverflowDegradesToZero(t *testing.T) {
	codec := quietCodec()
	profile := sampleProfile()
	profile.Config.Limits.MemoryLimitBytes = Unlimited

	result, err := codec.Encode(profile)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	if len(result.Overflowed) != 1 || result.Overflowed[0] != "config.memoryLimitBytes" {
		t.Errorf("Overflowed = %v, want [config.memoryLimitBytes]", result.Overflowed)
	}

	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.Config.Limits.MemoryLimitBytes != 0 {
		t.Errorf("overflowed limit decoded as %d, want 0", decoded.Config.Limits.MemoryLimitBytes)
	}
	// The other limits are unaffected.
	if decoded.Config.Limits.FilesLimit != 4096 {
		t.Errorf("FilesLimit = %d, want 4096", decoded.Config.Limits.FilesLimit)
	}
}

func TestEncode_MaxExactLimitSurvives(t *testing.T) {
	codec := NewCodec()
	profile := sampleProfile()
	profile.Config.Limits.StackLimitBytes = RLimit(maxExactWireInteger)

	result, err := codec.Encode(profile)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if len(result.Overflowed) != 0 {
		t.Fatalf("Encode() overflowed %v for a representable value", result.Overflowed)
	}

	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.Config.Limits.StackLimitBytes != RLimit(maxExactWireInteger) {
		t.Errorf("StackLimitBytes = %d, want %d", decoded.Config.Limits.StackLimitBytes, maxExactWireInteger)
	}
}

func TestDecode_MissingRequiredField(t *testing.T) {
	codec := NewCodec()
	result, err := codec.Encode(sampleProfile())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	for _, field := range []string{"context", "password", "encryptionKey", "executablePath", "config"} {
		t.Run(field, func(t *testing.T) {
			var document map[string]json.RawMessage
			if err := json.Unmarshal(result.Document, &document); err != nil {
				t.Fatalf("unmarshaling document: %v", err)
			}
			delete(document, field)
			mutated, err := json.Marshal(document)
			if err != nil {
				t.Fatalf("remarshaling document: %v", err)
			}

			_, err = codec.Decode(mutated)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Decode() error = %v, want ErrMissingField", err)
			}
			if decodeErr.Field != field {
				t.Errorf("DecodeError.Field = %q, want %q", decodeErr.Field, field)
			}
		})
	}
}

func TestDecode_AffinityTypeMismatch(t *testing.T) {
	codec := NewCodec()
	result, err := codec.Encode(sampleProfile())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	mutated := strings.Replace(string(result.Document), `"cpuAffinity":[true,false]`, `"cpuAffinity":[true,1]`, 1)
	if mutated == string(result.Document) {
		t.Fatal("test setup: affinity array not found in document")
	}

	_, err = codec.Decode([]byte(mutated))
	if !errors.Is(err, ErrAffinityElementType) {
		t.Fatalf("Decode() error = %v, want ErrAffinityElementType", err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Field != "config.cpuAffinity" {
		t.Errorf("Decode() error = %v, want DecodeError on config.cpuAffinity", err)
	}
}

func TestDecode_AffinityLengthPreserved(t *testing.T) {
	codec := NewCodec()
	profile := sampleProfile()
	profile.Config.Limits.CPUAffinity = CPUAffinity{true, false, false, true, true, false, true, false}

	result, err := codec.Encode(profile)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if !reflect.DeepEqual(decoded.Config.Limits.CPUAffinity, profile.Config.Limits.CPUAffinity) {
		t.Errorf("CPUAffinity = %v, want %v", decoded.Config.Limits.CPUAffinity, profile.Config.Limits.CPUAffinity)
	}
}

func TestDecode_MissingLimitDefaultsToZero(t *testing.T) {
	codec := quietCodec()
	result, err := codec.Encode(sampleProfile())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var document map[string]json.RawMessage
	json.Unmarshal(result.Document, &document)
	var config map[string]json.RawMessage
	json.Unmarshal(document["config"], &config)
	delete(config, "niceLimit")
	document["config"], _ = json.Marshal(config)
	mutated, _ := json.Marshal(document)

	decoded, err := codec.Decode(mutated)
	if err != nil {
		t.Fatalf("Decode() error: %v (missing limit field must not fail decode)", err)
	}
	if decoded.Config.Limits.NiceLimit != 0 {
		t.Errorf("NiceLimit = %d, want 0 default", decoded.Config.Limits.NiceLimit)
	}
}

func TestDecode_ScopeRebuiltThroughFactory(t *testing.T) {
	codec := NewCodec()
	result, err := codec.Encode(sampleProfile())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	scope := decoded.Context.Scope
	if scope.Project() != "proj1" || scope.ID() != "scope-42" {
		t.Errorf("Scope = (%q, %q), want (proj1, scope-42)", scope.Project(), scope.ID())
	}
}

func TestEnvironment_OrderAndDuplicatesPreserved(t *testing.T) {
	codec := NewCodec()
	profile := sampleProfile()
	profile.Config.Environment = EnvironmentList{
		{Name: "PATH", Value: "/usr/bin"},
		{Name: "LANG", Value: "en_US.UTF-8"},
		{Name: "PATH", Value: "/opt/bin"},
	}

	result, err := codec.Encode(profile)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if !reflect.DeepEqual(decoded.Config.Environment, profile.Config.Environment) {
		t.Errorf("Environment = %v, want %v (order and duplicates preserved)",
			decoded.Config.Environment, profile.Config.Environment)
	}
}

func TestDecode_EncryptedStateReproduced(t *testing.T) {
	codec := NewCodec()
	profile := sampleProfile()
	ciphertext, err := EncryptPassword(profile)
	if err != nil {
		t.Fatalf("EncryptPassword() error: %v", err)
	}
	_ = ciphertext

	result, err := codec.Encode(profile)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := codec.Decode(result.Document)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	// Decode reproduces the credential state Encode captured; it
	// never performs a transition of its own.
	if decoded.Password != "" {
		t.Errorf("decoded Password = %q, want empty", decoded.Password)
	}
	if decoded.EncryptionKey != profile.EncryptionKey {
		t.Errorf("decoded EncryptionKey = %q, want %q", decoded.EncryptionKey, profile.EncryptionKey)
	}
	if got := decoded.CredentialState(); got != CredentialEncrypted {
		t.Errorf("CredentialState() = %v, want CredentialEncrypted", got)
	}
}
