// Package oauth implements the dual-protocol client used to sign users in
// against admin-configured providers. A provider with a request-token URL
// speaks OAuth 1.0a, everything else speaks OAuth 2.0; both sit behind the
// same Client interface so the callback flow has a single shape.
//
// Provider failures never escape this package as errors: transport and
// protocol problems are logged and collapse to zero values, which the
// callers treat as a uniform login failure.
package oauth

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mlavin/allaccess/app/models"
)

const (
	// requestTimeout bounds every provider call; an unresponsive provider
	// must not hang the request worker.
	requestTimeout = 10 * time.Second

	// maxResponseBytes caps provider response bodies. Token and profile
	// payloads are small; anything bigger is a misbehaving endpoint.
	maxResponseBytes = 1 << 20

	sessionKeyPrefix = "allaccess-"
)

// Session is the per-user key/value store that bridges the redirect round
// trip between initiate and callback. Fiber's *session.Session satisfies it.
type Session interface {
	Get(key string) any
	Set(key string, value any)
}

// Client is the capability set shared by both protocol variants.
type Client interface {
	// RedirectURL builds the provider authorization URL for the browser
	// redirect. For OAuth 1.0a this acquires a request token first; for
	// OAuth 2.0 it stores a CSRF state value in the session.
	RedirectURL(sess Session, callbackURL string) (string, error)

	// AccessToken completes the flow from the callback request's query
	// parameters and returns the raw token response body. An empty string
	// means no valid token was acquired.
	AccessToken(query url.Values, sess Session, callbackURL string) string

	// ProfileInfo fetches the user profile with the given raw token
	// response. It returns decoded JSON when the body parses, the raw text
	// otherwise, and nil on any failure.
	ProfileInfo(rawToken string) any
}

// NewClient selects the protocol implementation for a provider. The only
// input is the provider shape: a non-empty request-token URL means
// OAuth 1.0a.
func NewClient(provider *models.Provider) Client {
	httpClient := &http.Client{Timeout: requestTimeout}
	if provider.RequestTokenURL != "" {
		return &OAuth1Client{provider: provider, http: httpClient}
	}
	return &OAuth2Client{provider: provider, http: httpClient}
}

// APIClient binds a protocol client to a stored raw token so callers can
// make follow-up calls against the provider on behalf of a linked account.
type APIClient struct {
	Client
	rawToken string
}

func NewAPIClient(provider *models.Provider, rawToken string) *APIClient {
	return &APIClient{Client: NewClient(provider), rawToken: rawToken}
}

// Profile fetches the remote profile with the bound token.
func (a *APIClient) Profile() any {
	return a.ProfileInfo(a.rawToken)
}

// fetch performs req and returns the response body. Transport errors and
// non-2xx statuses are logged with the provider name and collapse to "".
func fetch(client *http.Client, req *http.Request, provider string) string {
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("oauth: %s: request to %s failed: %v", provider, req.URL.Host, err)
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Printf("oauth: %s: reading response from %s failed: %v", provider, req.URL.Host, err)
		return ""
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("oauth: %s: %s %s returned status %d", provider, req.Method, req.URL.Host, resp.StatusCode)
		return ""
	}
	return string(body)
}

// decodeProfile decodes a profile response body: JSON when it parses, the
// raw text otherwise. Numbers are kept as json.Number so large identifiers
// survive without float formatting.
func decodeProfile(body string) any {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return body
	}
	return v
}
