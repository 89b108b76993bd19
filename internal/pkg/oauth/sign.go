package oauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// signer builds OAuth 1.0a HMAC-SHA1 Authorization headers (RFC 5849).
// Zero-value token/callback/verifier fields are simply omitted, which
// covers all three legs of the flow: request token (consumer + callback),
// access token (consumer + request token + verifier) and resource calls
// (consumer + access token).
type signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
	callback       string
	verifier       string
}

func (s signer) sign(req *http.Request) {
	oauth := s.protocolParams()
	oauth["oauth_signature"] = s.signature(signatureBase(req.Method, req.URL, oauth))
	req.Header.Set("Authorization", authorizationHeader(oauth))
}

func (s signer) protocolParams() map[string]string {
	params := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(time.Now().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if s.token != "" {
		params["oauth_token"] = s.token
	}
	if s.callback != "" {
		params["oauth_callback"] = s.callback
	}
	if s.verifier != "" {
		params["oauth_verifier"] = s.verifier
	}
	return params
}

// signature computes base64(HMAC-SHA1(key, base)) with the RFC 5849 key
// form "enc(consumerSecret)&enc(tokenSecret)". The token secret is empty
// on the request-token leg.
func (s signer) signature(base string) string {
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBase assembles "METHOD&enc(baseURL)&enc(params)". Parameters
// come from the protocol params plus the request query string, each
// percent-encoded, then ordered by name and value.
func signatureBase(method string, u *url.URL, oauthParams map[string]string) string {
	type pair struct{ key, value string }
	var pairs []pair
	for k, v := range oauthParams {
		pairs = append(pairs, pair{percentEncode(k), percentEncode(v)})
	}
	for k, vs := range u.Query() {
		for _, v := range vs {
			pairs = append(pairs, pair{percentEncode(k), percentEncode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = p.key + "=" + p.value
	}
	return strings.ToUpper(method) + "&" + percentEncode(baseURL(u)) + "&" + percentEncode(strings.Join(encoded, "&"))
}

// baseURL normalizes the request URL for the signature base string:
// lowercase scheme and host, default ports dropped, query stripped.
func baseURL(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if scheme == "http" && strings.HasSuffix(host, ":80") ||
		scheme == "https" && strings.HasSuffix(host, ":443") {
		host = host[:strings.LastIndex(host, ":")]
	}
	return scheme + "://" + host + u.EscapedPath()
}

func authorizationHeader(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = percentEncode(k) + `="` + percentEncode(params[k]) + `"`
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// percentEncode applies the strict RFC 3986 encoding RFC 5849 requires;
// url.QueryEscape is close but encodes spaces as '+'.
func percentEncode(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9',
			b == '-', b == '.', b == '_', b == '~':
			buf.WriteByte(b)
		default:
			fmt.Fprintf(&buf, "%%%02X", b)
		}
	}
	return buf.String()
}

func nonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b)
}
