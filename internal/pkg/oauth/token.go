package oauth

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ParseOAuth1Token extracts oauth_token and oauth_token_secret from a
// form-encoded token response. Missing fields come back empty rather than
// as errors so callers can branch on "no valid token acquired".
func ParseOAuth1Token(raw string) (token, secret string) {
	if raw == "" {
		return "", ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "", ""
	}
	return values.Get("oauth_token"), values.Get("oauth_token_secret")
}

// ParseOAuth2Token extracts access_token from an OAuth 2.0 token response.
// The spec left the encoding ambiguous for years, so providers answer with
// either JSON or form encoding; try JSON first and fall back.
func ParseOAuth2Token(raw string) string {
	if raw == "" {
		return ""
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return payload.AccessToken
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	return values.Get("access_token")
}

// LookupPath walks a dot separated path into decoded profile data and
// stringifies the leaf. A missing segment or a non-map along the way
// yields "" — that is the signal the caller uses for the failure path,
// not an error.
func LookupPath(info any, path string) string {
	current := info
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		if current, ok = m[part]; !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
