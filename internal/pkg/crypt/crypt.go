// Package crypt encrypts small secret strings (provider credentials, stored
// access tokens) for at-rest storage in text columns. Records are tagged with
// a prefix so values written before encryption was enabled still read back
// unchanged.
package crypt

import (
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	prefix = "$AES"
	sep    = "$"
	// keySize selects AES-256.
	keySize = 32
)

// ErrSignature is returned when a signed record fails MAC verification.
// This indicates tampering or a rotated APP_SECRET_KEY, not absent data.
var ErrSignature = errors.New("crypt: signature mismatch, did the secret key change?")

// Codec performs signed AES encryption with a key derived from a
// process-wide secret. It is safe for concurrent use.
type Codec struct {
	key  []byte
	sign bool
}

// New derives the AES key from secret (zero-padded or truncated to 32
// bytes) and returns a signing codec.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("crypt: empty secret key")
	}
	return &Codec{key: deriveKey(secret), sign: true}, nil
}

// deriveKey left-pads the secret with '0' characters to the key size, then
// truncates. Short and long keys both map onto a stable 32 byte key.
func deriveKey(secret string) []byte {
	for len(secret) < keySize {
		secret = "0" + secret
	}
	return []byte(secret[:keySize])
}

// IsEncrypted reports whether value carries the encrypted-record prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, prefix)
}

// Encrypt returns plain encrypted as "$AES$<mac>$<hex-ciphertext>". The MAC
// is an HMAC-SHA256 over the hex ciphertext using the derived key.
func (c *Codec) Encrypt(plain string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("crypt: %w", err)
	}

	padded := addPadding([]byte(plain), block.BlockSize())
	cipherText := make([]byte, len(padded))
	for i := 0; i < len(padded); i += block.BlockSize() {
		block.Encrypt(cipherText[i:i+block.BlockSize()], padded[i:i+block.BlockSize()])
	}
	hexText := hex.EncodeToString(cipherText)

	parts := []string{prefix}
	if c.sign {
		parts = append(parts, c.signature(hexText))
	}
	parts = append(parts, hexText)
	return strings.Join(parts, sep), nil
}

// Decrypt reverses Encrypt. Values without the record prefix are returned
// unchanged so plaintext written by older deployments keeps working.
func (c *Codec) Decrypt(record string) (string, error) {
	if !IsEncrypted(record) {
		return record, nil
	}

	mac, hexText, err := splitRecord(record)
	if err != nil {
		return "", err
	}
	if mac != "" && !hmac.Equal([]byte(c.signature(hexText)), []byte(mac)) {
		return "", ErrSignature
	}

	cipherText, err := hex.DecodeString(hexText)
	if err != nil {
		return "", fmt.Errorf("crypt: malformed ciphertext: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("crypt: %w", err)
	}
	if len(cipherText) == 0 || len(cipherText)%block.BlockSize() != 0 {
		return "", errors.New("crypt: ciphertext is not block aligned")
	}

	plain := make([]byte, len(cipherText))
	for i := 0; i < len(cipherText); i += block.BlockSize() {
		block.Decrypt(plain[i:i+block.BlockSize()], cipherText[i:i+block.BlockSize()])
	}
	// Padding starts at the first zero byte.
	if i := strings.IndexByte(string(plain), 0); i >= 0 {
		plain = plain[:i]
	}
	return string(plain), nil
}

func (c *Codec) signature(hexText string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(hexText))
	return hex.EncodeToString(mac.Sum(nil))
}

// addPadding appends a zero byte terminator plus '*' filler. At least two
// padding bytes are always added, so the terminator is always present even
// when the plaintext fills its final block.
func addPadding(clear []byte, blockSize int) []byte {
	padding := blockSize - ((len(clear) + 2) % blockSize) + 2
	padded := make([]byte, 0, len(clear)+padding)
	padded = append(padded, clear...)
	padded = append(padded, 0)
	for i := 1; i < padding; i++ {
		padded = append(padded, '*')
	}
	return padded
}

// splitRecord splits "$AES[$mac]$hex" into its mac (may be empty) and hex
// ciphertext fields.
func splitRecord(record string) (mac, hexText string, err error) {
	parts := strings.Split(record, sep)
	switch len(parts) {
	case 3: // "", "AES", ciphertext
		return "", parts[2], nil
	case 4: // "", "AES", mac, ciphertext
		return parts[2], parts[3], nil
	}
	return "", "", errors.New("crypt: malformed encrypted record")
}
