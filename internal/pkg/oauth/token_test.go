package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOAuth1Token(t *testing.T) {
	token, secret := ParseOAuth1Token("oauth_token=t&oauth_token_secret=s")
	assert.Equal(t, "t", token)
	assert.Equal(t, "s", secret)

	token, secret = ParseOAuth1Token("oauth_token=t")
	assert.Equal(t, "t", token)
	assert.Equal(t, "", secret)

	token, secret = ParseOAuth1Token("garbage")
	assert.Equal(t, "", token)
	assert.Equal(t, "", secret)

	token, secret = ParseOAuth1Token("")
	assert.Equal(t, "", token)
	assert.Equal(t, "", secret)

	// Invalid escapes do not yield partial results.
	token, secret = ParseOAuth1Token("oauth_token=%zz")
	assert.Equal(t, "", token)
	assert.Equal(t, "", secret)
}

func TestParseOAuth2Token(t *testing.T) {
	assert.Equal(t, "t", ParseOAuth2Token(`{"access_token":"t"}`))
	assert.Equal(t, "t", ParseOAuth2Token(`{"access_token":"t","token_type":"bearer","expires_in":3600}`))
	assert.Equal(t, "t", ParseOAuth2Token("access_token=t"))
	assert.Equal(t, "t", ParseOAuth2Token("access_token=t&scope=user"))
	assert.Equal(t, "", ParseOAuth2Token(`{"error":"invalid_grant"}`))
	assert.Equal(t, "", ParseOAuth2Token("garbage"))
	assert.Equal(t, "", ParseOAuth2Token(""))
}

func TestLookupPath(t *testing.T) {
	info := decodeProfile(`{"id": 100, "user": {"uuid": "abc", "admin": true, "nested": {"deep": "v"}}, "score": 1.5}`)

	assert.Equal(t, "100", LookupPath(info, "id"))
	assert.Equal(t, "abc", LookupPath(info, "user.uuid"))
	assert.Equal(t, "v", LookupPath(info, "user.nested.deep"))
	assert.Equal(t, "true", LookupPath(info, "user.admin"))
	assert.Equal(t, "1.5", LookupPath(info, "score"))

	// Missing or unresolvable paths signal failure with "" rather than errors.
	assert.Equal(t, "", LookupPath(info, "missing"))
	assert.Equal(t, "", LookupPath(info, "id.sub"))
	assert.Equal(t, "", LookupPath(info, "user.nested"))
	assert.Equal(t, "", LookupPath(nil, "id"))
	assert.Equal(t, "", LookupPath("raw text profile", "id"))
}

func TestLookupPathLargeIdentifier(t *testing.T) {
	// Large numeric ids must not pick up float exponent formatting.
	info := decodeProfile(`{"id": 90071992547409923}`)
	assert.Equal(t, "90071992547409923", LookupPath(info, "id"))
}

func TestDecodeProfileFallsBackToText(t *testing.T) {
	assert.Equal(t, "plain text", decodeProfile("plain text"))

	decoded, ok := decodeProfile(`{"a":1}`).(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, decoded, "a")
}
