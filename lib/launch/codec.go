// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// maxExactWireInteger is the largest integer a JSON number can carry
// without losing precision (2^53). Limit values above this cannot ride
// the document faithfully.
const maxExactWireInteger = uint64(1) << 53

// Codec converts profiles to and from their JSON document form. The
// codec is purely structural: it never touches the credential state —
// it ships whichever of Password/EncryptionKey the caller left in the
// profile. Callers must run [EncryptPassword] before encoding a
// profile that leaves the process.
type Codec struct {
	logger *slog.Logger
}

// NewCodec returns a codec that logs decode diagnostics and limit
// overflows to the default slog logger.
func NewCodec() *Codec {
	return &Codec{logger: slog.Default()}
}

// SetLogger replaces the codec's logger.
func (c *Codec) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// EncodeResult is the outcome of an encode. Overflowed lists the
// document paths of limit fields whose values exceeded the wire
// numeric range and were written as zero. The degradation is
// deliberate and visible: callers for whom a zeroed limit is
// unacceptable can treat a non-empty Overflowed as a failure.
type EncodeResult struct {
	// Document is the JSON profile document.
	Document []byte

	// Overflowed lists limit fields written as zero because their
	// value cannot be represented exactly as a JSON number.
	Overflowed []string
}

// wireContext is the flattened context object: username plus the
// scope's project/id pair. The scope is rebuilt through
// [ScopeFromProjectID] on decode, never passed through opaquely.
type wireContext struct {
	Username string `json:"username"`
	Project  string `json:"project"`
	ID       string `json:"id"`
}

type wireConfig struct {
	Args               []string        `json:"args"`
	Environment        EnvironmentList `json:"environment"`
	StdInput           string          `json:"stdInput"`
	StdStreamBehavior  int             `json:"stdStreamBehavior"`
	Priority           int32           `json:"priority"`
	MemoryLimitBytes   float64         `json:"memoryLimitBytes"`
	StackLimitBytes    float64         `json:"stackLimitBytes"`
	UserProcessesLimit float64         `json:"userProcessesLimit"`
	CPULimit           float64         `json:"cpuLimit"`
	NiceLimit          float64         `json:"niceLimit"`
	FilesLimit         float64         `json:"filesLimit"`
	CPUAffinity        CPUAffinity     `json:"cpuAffinity"`
}

type wireDocument struct {
	Context        wireContext     `json:"context"`
	Password       string          `json:"password"`
	EncryptionKey  string          `json:"encryptionKey"`
	ExecutablePath string          `json:"executablePath"`
	Config         wireConfig      `json:"config"`
}

// Encode serializes the profile to its JSON document form. Limit
// fields whose values exceed the exact integer range of a JSON number
// are written as zero; each such field is logged and reported in
// [EncodeResult.Overflowed] rather than failing the encode.
func (c *Codec) Encode(profile *Profile) (EncodeResult, error) {
	var overflowed []string

	limit := func(field string, value RLimit) float64 {
		if uint64(value) > maxExactWireInteger {
			c.logger.Warn("resource limit exceeds wire numeric range, encoding as zero",
				"field", field, "value", uint64(value))
			overflowed = append(overflowed, field)
			return 0
		}
		return float64(value)
	}

	args := profile.Config.Args
	if args == nil {
		args = []string{}
	}

	document := wireDocument{
		Context: wireContext{
			Username: profile.Context.Username,
			Project:  profile.Context.Scope.Project(),
			ID:       profile.Context.Scope.ID(),
		},
		Password:       profile.Password,
		EncryptionKey:  profile.EncryptionKey,
		ExecutablePath: profile.ExecutablePath,
		Config: wireConfig{
			Args:               args,
			Environment:        profile.Config.Environment,
			StdInput:           profile.Config.StdInput,
			StdStreamBehavior:  int(profile.Config.StdStreamBehavior),
			Priority:           profile.Config.Limits.Priority,
			MemoryLimitBytes:   limit("config.memoryLimitBytes", profile.Config.Limits.MemoryLimitBytes),
			StackLimitBytes:    limit("config.stackLimitBytes", profile.Config.Limits.StackLimitBytes),
			UserProcessesLimit: limit("config.userProcessesLimit", profile.Config.Limits.UserProcessesLimit),
			CPULimit:           limit("config.cpuLimit", profile.Config.Limits.CPULimit),
			NiceLimit:          limit("config.niceLimit", profile.Config.Limits.NiceLimit),
			FilesLimit:         limit("config.filesLimit", profile.Config.Limits.FilesLimit),
			CPUAffinity:        profile.Config.Limits.CPUAffinity,
		},
	}

	encoded, err := json.Marshal(document)
	if err != nil {
		return EncodeResult{}, fmt.Errorf("encoding launch profile: %w", err)
	}
	return EncodeResult{Document: encoded, Overflowed: overflowed}, nil
}

// Decode reconstructs a profile from its JSON document form.
//
// Structural fields (context, the credential fields, executablePath,
// config, args, environment, cpuAffinity) are required; a missing or
// mistyped one fails the decode with a [DecodeError]. Numeric scalar
// fields that are missing or mistyped are logged and defaulted to zero
// so that a document from an older peer still decodes. The one strict
// exception inside config is cpuAffinity: an array containing a
// non-boolean element fails the whole decode with
// [ErrAffinityElementType].
//
// Decode is lossless with Encode: for every valid profile p,
// Decode(Encode(p)) reproduces p field for field, including whichever
// credential state Encode captured.
func (c *Codec) Decode(document []byte) (*Profile, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(document, &root); err != nil {
		return nil, &DecodeError{Field: "(document)", Err: err}
	}

	profile := &Profile{}

	if err := requireString(root, "password", "password", &profile.Password); err != nil {
		return nil, err
	}
	if err := requireString(root, "encryptionKey", "encryptionKey", &profile.EncryptionKey); err != nil {
		return nil, err
	}
	if err := requireString(root, "executablePath", "executablePath", &profile.ExecutablePath); err != nil {
		return nil, err
	}

	contextRaw, ok := root["context"]
	if !ok {
		return nil, &DecodeError{Field: "context", Err: ErrMissingField}
	}
	var context wireContext
	if err := json.Unmarshal(contextRaw, &context); err != nil {
		return nil, &DecodeError{Field: "context", Err: err}
	}
	profile.Context.Username = context.Username
	profile.Context.Scope = ScopeFromProjectID(context.Project, context.ID)

	configRaw, ok := root["config"]
	if !ok {
		return nil, &DecodeError{Field: "config", Err: ErrMissingField}
	}
	var config map[string]json.RawMessage
	if err := json.Unmarshal(configRaw, &config); err != nil {
		return nil, &DecodeError{Field: "config", Err: err}
	}

	argsRaw, ok := config["args"]
	if !ok {
		return nil, &DecodeError{Field: "config.args", Err: ErrMissingField}
	}
	if err := json.Unmarshal(argsRaw, &profile.Config.Args); err != nil {
		return nil, &DecodeError{Field: "config.args", Err: err}
	}

	environmentRaw, ok := config["environment"]
	if !ok {
		return nil, &DecodeError{Field: "config.environment", Err: ErrMissingField}
	}
	if err := json.Unmarshal(environmentRaw, &profile.Config.Environment); err != nil {
		return nil, &DecodeError{Field: "config.environment", Err: err}
	}

	if err := requireString(config, "stdInput", "config.stdInput", &profile.Config.StdInput); err != nil {
		return nil, err
	}

	var streamBehavior int
	c.lenientInt(config, "config.stdStreamBehavior", "stdStreamBehavior", &streamBehavior)
	profile.Config.StdStreamBehavior = StdStreamBehavior(streamBehavior)

	var priority int
	c.lenientInt(config, "config.priority", "priority", &priority)
	profile.Config.Limits.Priority = int32(priority)

	profile.Config.Limits.MemoryLimitBytes = c.lenientLimit(config, "config.memoryLimitBytes", "memoryLimitBytes")
	profile.Config.Limits.StackLimitBytes = c.lenientLimit(config, "config.stackLimitBytes", "stackLimitBytes")
	profile.Config.Limits.UserProcessesLimit = c.lenientLimit(config, "config.userProcessesLimit", "userProcessesLimit")
	profile.Config.Limits.CPULimit = c.lenientLimit(config, "config.cpuLimit", "cpuLimit")
	profile.Config.Limits.NiceLimit = c.lenientLimit(config, "config.niceLimit", "niceLimit")
	profile.Config.Limits.FilesLimit = c.lenientLimit(config, "config.filesLimit", "filesLimit")

	affinityRaw, ok := config["cpuAffinity"]
	if !ok {
		return nil, &DecodeError{Field: "config.cpuAffinity", Err: ErrMissingField}
	}
	if err := json.Unmarshal(affinityRaw, &profile.Config.Limits.CPUAffinity); err != nil {
		return nil, &DecodeError{Field: "config.cpuAffinity", Err: err}
	}

	return profile, nil
}

// requireString reads a required string member, failing the decode
// when it is absent or not a string.
func requireString(object map[string]json.RawMessage, key, field string, target *string) error {
	raw, ok := object[key]
	if !ok {
		return &DecodeError{Field: field, Err: ErrMissingField}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &DecodeError{Field: field, Err: err}
	}
	return nil
}

// lenientInt reads an optional integer member, logging and defaulting
// to zero when it is absent or mistyped.
func (c *Codec) lenientInt(object map[string]json.RawMessage, field, key string, target *int) {
	raw, ok := object[key]
	if !ok {
		c.logger.Warn("profile document missing numeric field, defaulting to zero", "field", field)
		*target = 0
		return
	}
	if err := json.Unmarshal(raw, target); err != nil {
		c.logger.Warn("profile document numeric field malformed, defaulting to zero",
			"field", field, "error", err)
		*target = 0
	}
}

// lenientLimit reads an optional limit member carried as a JSON
// number, logging and defaulting to zero when it is absent, mistyped,
// or negative.
func (c *Codec) lenientLimit(object map[string]json.RawMessage, field, key string) RLimit {
	raw, ok := object[key]
	if !ok {
		c.logger.Warn("profile document missing limit field, defaulting to zero", "field", field)
		return 0
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("profile document limit field malformed, defaulting to zero",
			"field", field, "error", err)
		return 0
	}
	if value < 0 {
		c.logger.Warn("profile document limit field negative, defaulting to zero",
			"field", field, "value", value)
		return 0
	}
	return RLimit(value)
}
