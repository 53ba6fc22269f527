// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"errors"
	"fmt"
)

// ErrMissingField marks a required field absent from a profile
// document. Wrapped by [DecodeError]; match with errors.Is.
var ErrMissingField = errors.New("required field missing")

// ErrAffinityElementType marks a cpuAffinity array element that is not
// a JSON boolean. Affinity type mismatches always fail the decode —
// a mask with guessed entries could schedule a session onto CPUs it
// was meant to be kept off.
var ErrAffinityElementType = errors.New("cpu affinity element is not a boolean")

// DecodeError reports a missing or malformed field in a profile
// document.
type DecodeError struct {
	// Field is the document path of the offending field, e.g.
	// "config.cpuAffinity".
	Field string

	// Err is the underlying cause: ErrMissingField,
	// ErrAffinityElementType, or a JSON syntax/type error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding profile field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FormatError reports a malformed EncryptionKey string: wrong segment
// count or a segment that is not valid base64. Distinct from
// CryptoError so callers can tell "the profile is mangled" from "the
// ciphertext does not match the key".
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "encryption key has invalid format: " + e.Reason
}

// CryptoError reports a failure of the cipher layer itself: the random
// source was unavailable, encryption failed, or decryption/
// authentication failed. A CryptoError from [DecryptPassword] means
// the profile's credential fields were left untouched.
type CryptoError struct {
	// Op is the operation that failed: "generate-key", "encrypt",
	// or "decrypt".
	Op string

	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("credential %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }
