// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the environment as a JSON object whose member
// order is the list order. encoding/json's map marshaling sorts keys,
// which would reorder the environment and collapse duplicate names, so
// the object is written by hand.
func (l EnvironmentList) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, variable := range l {
		if index > 0 {
			buffer.WriteByte(',')
		}
		name, err := json.Marshal(variable.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(variable.Value)
		if err != nil {
			return nil, err
		}
		buffer.Write(name)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into an ordered environment list.
// The token stream is consumed directly so that member order survives
// the round trip; decoding through a map would lose it.
func (l *EnvironmentList) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("environment is not a JSON object")
	}

	variables := make(EnvironmentList, 0)
	for decoder.More() {
		nameToken, err := decoder.Token()
		if err != nil {
			return err
		}
		name, ok := nameToken.(string)
		if !ok {
			return fmt.Errorf("environment member name is not a string")
		}

		valueToken, err := decoder.Token()
		if err != nil {
			return err
		}
		value, ok := valueToken.(string)
		if !ok {
			return fmt.Errorf("environment value for %q is not a string", name)
		}

		variables = append(variables, EnvironmentVariable{Name: name, Value: value})
	}

	// Consume the closing brace.
	if _, err := decoder.Token(); err != nil {
		return err
	}

	*l = variables
	return nil
}

// UnmarshalJSON reads a JSON array of booleans into an affinity mask.
// Every element must be a JSON true or false; any other type fails the
// decode with [ErrAffinityElementType]. Type mismatches are never
// coerced — a numeric 1 where true was meant is a malformed document,
// and guessing produces a mask that schedules the session onto the
// wrong CPUs.
func (a *CPUAffinity) UnmarshalJSON(data []byte) error {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return err
	}

	mask := make(CPUAffinity, 0, len(elements))
	for index, element := range elements {
		var eligible bool
		if err := json.Unmarshal(element, &eligible); err != nil {
			return fmt.Errorf("element %d: %w", index, ErrAffinityElementType)
		}
		mask = append(mask, eligible)
	}

	*a = mask
	return nil
}
