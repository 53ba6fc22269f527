// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/atelier-foundation/atelier/lib/secret"
)

// keySize is the symmetric key size for password encryption: 256 bits.
const keySize = chacha20poly1305.KeySize

// encryptionKeyDelimiter joins the base64 key and base64 nonce
// segments of Profile.EncryptionKey.
const encryptionKeyDelimiter = "|"

// generateKey fills a fresh 256-bit key from the system's
// cryptographically secure random source. A failure of the random
// source is a hard error — the cipher never falls back to a zero or
// otherwise predictable key.
func generateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, &CryptoError{Op: "generate-key", Err: err}
	}
	return key, nil
}

// EncryptPassword encrypts the profile's plaintext password under a
// freshly generated 256-bit key (ChaCha20-Poly1305 with a random
// nonce), stores base64(key)|base64(nonce) in EncryptionKey, clears
// Password, and returns the base64 ciphertext.
//
// The ciphertext is the actual secret and is deliberately NOT stored
// in the profile: the profile document is routinely logged and
// persisted, and it carries the key. The caller must deliver the
// returned ciphertext through a channel distinct from the profile's
// transport — never argv, never the environment, never logs. See
// lib/ipc for the credential socket used for this.
//
// On any error the profile is left unmodified. The profile's fields
// are assigned only after all cryptographic work has succeeded, so a
// reader never observes a half-encrypted profile; callers sharing a
// profile across goroutines must still serialize access.
func EncryptPassword(profile *Profile) (string, error) {
	key, err := generateKey()
	if err != nil {
		return "", err
	}
	defer secret.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", &CryptoError{Op: "encrypt", Err: err}
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", &CryptoError{Op: "encrypt", Err: fmt.Errorf("generating nonce: %w", err)}
	}

	plaintext := []byte(profile.Password)
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	secret.Zero(plaintext)

	encryptionKey := base64.StdEncoding.EncodeToString(key) +
		encryptionKeyDelimiter +
		base64.StdEncoding.EncodeToString(nonce)

	// All cryptographic work has succeeded; mutate the profile in
	// one final step.
	profile.EncryptionKey = encryptionKey
	profile.Password = ""

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptPassword reconstitutes the profile's plaintext password from
// its EncryptionKey and the out-of-band ciphertext, then clears
// EncryptionKey.
//
// A malformed EncryptionKey (wrong segment count, invalid base64) is a
// [FormatError]; an authentication failure — the ciphertext does not
// match the key and nonce — is a [CryptoError]. In both cases the
// profile's credential fields are left untouched: a session must never
// be spawned with a garbage password that decryption happened to
// produce, and authenticated decryption guarantees failure is loud.
func DecryptPassword(profile *Profile, ciphertext string) error {
	segments := strings.Split(profile.EncryptionKey, encryptionKeyDelimiter)
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return &FormatError{Reason: fmt.Sprintf("expected 2 segments, got %d", len(segments))}
	}

	key, err := base64.StdEncoding.DecodeString(segments[0])
	if err != nil {
		return &FormatError{Reason: "key segment is not valid base64"}
	}
	defer secret.Zero(key)

	nonce, err := base64.StdEncoding.DecodeString(segments[1])
	if err != nil {
		return &FormatError{Reason: "nonce segment is not valid base64"}
	}

	rawCiphertext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return &FormatError{Reason: "ciphertext is not valid base64"}
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return &CryptoError{Op: "decrypt", Err: err}
	}
	if len(nonce) != aead.NonceSize() {
		return &CryptoError{Op: "decrypt", Err: fmt.Errorf("nonce is %d bytes, want %d", len(nonce), aead.NonceSize())}
	}

	plaintext, err := aead.Open(nil, nonce, rawCiphertext, nil)
	if err != nil {
		return &CryptoError{Op: "decrypt", Err: err}
	}

	profile.Password = string(plaintext)
	profile.EncryptionKey = ""
	secret.Zero(plaintext)

	return nil
}
