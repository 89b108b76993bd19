package crypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec, err := New("test-secret")
	require.NoError(t, err)

	cases := []string{
		"",
		"x",
		"hunter2",
		"exactly-14-ch!",                   // blockSize-2, minimum padding
		"sixteen-chars-ok",                 // fills one block exactly
		"oauth_token=abc&oauth_token_secret=def",
		"pässwörd with ünicode ✓",
	}
	for _, plain := range cases {
		record, err := codec.Encrypt(plain)
		require.NoError(t, err)
		assert.True(t, IsEncrypted(record))
		assert.True(t, strings.HasPrefix(record, "$AES$"))

		got, err := codec.Decrypt(record)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestDecryptLegacyPlaintextPassesThrough(t *testing.T) {
	codec, err := New("test-secret")
	require.NoError(t, err)

	for _, value := range []string{"plain-token", "", "AES-but-no-dollar", "a$b$c"} {
		got, err := codec.Decrypt(value)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	}
}

func TestDecryptDetectsTampering(t *testing.T) {
	codec, err := New("test-secret")
	require.NoError(t, err)

	record, err := codec.Encrypt("super secret value")
	require.NoError(t, err)

	// Flip every byte in the MAC and ciphertext fields in turn; each
	// mutation must fail signature verification, never decrypt silently.
	body := len("$AES$")
	for i := body; i < len(record); i++ {
		if record[i] == '$' {
			continue
		}
		flipped := byte('0')
		if record[i] == '0' {
			flipped = '1'
		}
		mutated := record[:i] + string(flipped) + record[i+1:]

		_, err := codec.Decrypt(mutated)
		assert.ErrorIs(t, err, ErrSignature, "mutation at offset %d", i)
	}
}

func TestDecryptWithRotatedKeyFails(t *testing.T) {
	oldCodec, err := New("old-secret")
	require.NoError(t, err)
	newCodec, err := New("new-secret")
	require.NoError(t, err)

	record, err := oldCodec.Encrypt("token")
	require.NoError(t, err)

	_, err = newCodec.Decrypt(record)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestDecryptUnsignedRecord(t *testing.T) {
	codec, err := New("test-secret")
	require.NoError(t, err)
	codec.sign = false

	record, err := codec.Encrypt("no mac here")
	require.NoError(t, err)
	assert.Len(t, strings.Split(record, "$"), 3)

	got, err := codec.Decrypt(record)
	require.NoError(t, err)
	assert.Equal(t, "no mac here", got)
}

func TestDecryptMalformedRecord(t *testing.T) {
	codec, err := New("test-secret")
	require.NoError(t, err)

	_, err = codec.Decrypt("$AES$a$b$c$d")
	assert.Error(t, err)

	_, err = codec.Decrypt("$AES$nothex")
	assert.Error(t, err)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestKeyDerivationIsStable(t *testing.T) {
	short, err := New("abc")
	require.NoError(t, err)
	long, err := New(strings.Repeat("k", 64))
	require.NoError(t, err)

	for _, codec := range []*Codec{short, long} {
		record, err := codec.Encrypt("stable")
		require.NoError(t, err)
		got, err := codec.Decrypt(record)
		require.NoError(t, err)
		assert.Equal(t, "stable", got)
	}
}
