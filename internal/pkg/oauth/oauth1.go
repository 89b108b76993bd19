package oauth

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/mlavin/allaccess/app/models"
)

// OAuth1Client drives the three-legged OAuth 1.0a dance. The raw
// request-token response is parked in the session between the initiate and
// callback legs because the access-token exchange needs the request secret
// back, and the only state that survives the redirect is the session.
type OAuth1Client struct {
	provider *models.Provider
	http     *http.Client
}

// sessionKey scopes the stored request token by provider name so flows
// started against different providers in one session cannot collide.
func (c *OAuth1Client) sessionKey() string {
	return sessionKeyPrefix + c.provider.Name + "-request-token"
}

func (c *OAuth1Client) RedirectURL(sess Session, callbackURL string) (string, error) {
	token := c.requestToken(sess, callbackURL)
	if token == "" {
		return "", fmt.Errorf("oauth: %s: no request token acquired", c.provider.Name)
	}
	args := url.Values{"oauth_token": {token}}
	return c.provider.AuthorizationURL + "?" + args.Encode(), nil
}

// requestToken performs the signed request-token POST. Only the consumer
// credentials sign this leg; the callback URL rides along as
// oauth_callback. The raw response is stored in the session for the
// callback to pick up.
func (c *OAuth1Client) requestToken(sess Session, callbackURL string) string {
	req, err := http.NewRequest(http.MethodPost, c.provider.RequestTokenURL, nil)
	if err != nil {
		log.Printf("oauth: %s: bad request token url: %v", c.provider.Name, err)
		return ""
	}
	signer{
		consumerKey:    c.provider.Key(),
		consumerSecret: c.provider.Secret(),
		callback:       callbackURL,
	}.sign(req)

	raw := fetch(c.http, req, c.provider.Name)
	if raw == "" {
		return ""
	}
	sess.Set(c.sessionKey(), raw)

	token, _ := ParseOAuth1Token(raw)
	return token
}

func (c *OAuth1Client) AccessToken(query url.Values, sess Session, callbackURL string) string {
	raw, _ := sess.Get(c.sessionKey()).(string)
	token, secret := ParseOAuth1Token(raw)
	if token == "" || secret == "" {
		log.Printf("oauth: %s: no request token in session", c.provider.Name)
		return ""
	}

	// No verifier means the user never completed the provider's
	// authorization screen; abort before any network call.
	verifier := query.Get("oauth_verifier")
	if verifier == "" {
		log.Printf("oauth: %s: callback missing oauth_verifier", c.provider.Name)
		return ""
	}

	req, err := http.NewRequest(http.MethodPost, c.provider.AccessTokenURL, nil)
	if err != nil {
		log.Printf("oauth: %s: bad access token url: %v", c.provider.Name, err)
		return ""
	}
	signer{
		consumerKey:    c.provider.Key(),
		consumerSecret: c.provider.Secret(),
		token:          token,
		tokenSecret:    secret,
		verifier:       verifier,
	}.sign(req)

	return fetch(c.http, req, c.provider.Name)
}

func (c *OAuth1Client) ProfileInfo(rawToken string) any {
	token, secret := ParseOAuth1Token(rawToken)
	if token == "" {
		log.Printf("oauth: %s: no access token to fetch profile with", c.provider.Name)
		return nil
	}

	req, err := http.NewRequest(http.MethodGet, c.provider.ProfileURL, nil)
	if err != nil {
		log.Printf("oauth: %s: bad profile url: %v", c.provider.Name, err)
		return nil
	}
	signer{
		consumerKey:    c.provider.Key(),
		consumerSecret: c.provider.Secret(),
		token:          token,
		tokenSecret:    secret,
	}.sign(req)

	body := fetch(c.http, req, c.provider.Name)
	if body == "" {
		return nil
	}
	return decodeProfile(body)
}
