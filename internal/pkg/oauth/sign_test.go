package oauth

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Known-answer test built from Twitter's published request-signing example.
func TestSignatureBaseKnownVector(t *testing.T) {
	u, err := url.Parse("https://api.twitter.com/1.1/statuses/update.json")
	require.NoError(t, err)
	q := u.Query()
	q.Set("include_entities", "true")
	q.Set("status", "Hello Ladies + Gentlemen, a signed OAuth request!")
	u.RawQuery = q.Encode()

	params := map[string]string{
		"oauth_consumer_key":     "xvz1evFS4wEEPTGEFPHBog",
		"oauth_nonce":            "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg",
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1318622958",
		"oauth_token":            "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"oauth_version":          "1.0",
	}

	base := signatureBase("post", u, params)
	expected := "POST&https%3A%2F%2Fapi.twitter.com%2F1.1%2Fstatuses%2Fupdate.json&" +
		"include_entities%3Dtrue%26" +
		"oauth_consumer_key%3Dxvz1evFS4wEEPTGEFPHBog%26" +
		"oauth_nonce%3DkYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg%26" +
		"oauth_signature_method%3DHMAC-SHA1%26" +
		"oauth_timestamp%3D1318622958%26" +
		"oauth_token%3D370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb%26" +
		"oauth_version%3D1.0%26" +
		"status%3DHello%2520Ladies%2520%252B%2520Gentlemen%252C%2520a%2520signed%2520OAuth%2520request%2521"
	assert.Equal(t, expected, base)

	s := signer{
		consumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		tokenSecret:    "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	}
	assert.Equal(t, "tnnArxj06cWHq44gCs1OSKk/jLY=", s.signature(base))
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "abcABC123-._~", percentEncode("abcABC123-._~"))
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "%2B", percentEncode("+"))
	assert.Equal(t, "%25", percentEncode("%"))
	assert.Equal(t, "%E2%98%83", percentEncode("☃"))
	assert.Equal(t, "", percentEncode(""))
}

func TestBaseURLNormalization(t *testing.T) {
	cases := map[string]string{
		"HTTP://Example.COM:80/path":     "http://example.com/path",
		"https://example.com:443/path":   "https://example.com/path",
		"https://example.com:8443/path":  "https://example.com:8443/path",
		"http://example.com/path?q=skip": "http://example.com/path",
	}
	for in, want := range cases {
		u, err := url.Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, baseURL(u))
	}
}

func TestSignSetsAuthorizationHeader(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://provider.example/oauth/request_token", nil)
	require.NoError(t, err)

	signer{
		consumerKey:    "ck",
		consumerSecret: "cs",
		callback:       "https://app.example/auth/provider/callback",
	}.sign(req)

	header := req.Header.Get("Authorization")
	assert.Contains(t, header, "OAuth ")
	assert.Contains(t, header, `oauth_consumer_key="ck"`)
	assert.Contains(t, header, `oauth_signature_method="HMAC-SHA1"`)
	assert.Contains(t, header, `oauth_callback="https%3A%2F%2Fapp.example%2Fauth%2Fprovider%2Fcallback"`)
	assert.Contains(t, header, "oauth_signature=")
	assert.Contains(t, header, "oauth_nonce=")
	assert.NotContains(t, header, "oauth_token=", "no resource owner credentials on the request token leg")
}

func TestSignIncludesVerifierAndToken(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://provider.example/oauth/access_token", nil)
	require.NoError(t, err)

	signer{
		consumerKey:    "ck",
		consumerSecret: "cs",
		token:          "rt",
		tokenSecret:    "rs",
		verifier:       "v123",
	}.sign(req)

	header := req.Header.Get("Authorization")
	assert.Contains(t, header, `oauth_token="rt"`)
	assert.Contains(t, header, `oauth_verifier="v123"`)
}
