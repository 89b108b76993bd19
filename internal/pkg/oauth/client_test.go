package oauth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlavin/allaccess/app/models"
)

// fakeSession is a map-backed stand-in for the fiber session.
type fakeSession map[string]any

func (s fakeSession) Get(key string) any        { return s[key] }
func (s fakeSession) Set(key string, value any) { s[key] = value }

func testProvider(oauth1 bool, base string) *models.Provider {
	key, secret := "ck", "cs"
	p := &models.Provider{
		Name:             "example",
		AuthorizationURL: base + "/authorize",
		AccessTokenURL:   base + "/access_token",
		ProfileURL:       base + "/profile",
		ConsumerKey:      &key,
		ConsumerSecret:   &secret,
	}
	if oauth1 {
		p.RequestTokenURL = base + "/request_token"
	}
	return p
}

func TestNewClientSelectsProtocol(t *testing.T) {
	client := NewClient(testProvider(true, "https://provider.example"))
	assert.IsType(t, &OAuth1Client{}, client)

	client = NewClient(testProvider(false, "https://provider.example"))
	assert.IsType(t, &OAuth2Client{}, client)
}

func TestOAuth2RedirectURLStoresState(t *testing.T) {
	sess := fakeSession{}
	client := NewClient(testProvider(false, "https://provider.example"))

	redirect, err := client.RedirectURL(sess, "https://app.example/auth/example/callback")
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "ck", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://app.example/auth/example/callback", q.Get("redirect_uri"))

	state := q.Get("state")
	assert.GreaterOrEqual(t, len(state), 32)
	assert.Equal(t, state, sess["allaccess-example-state"])
}

func TestOAuth2StateMismatchMakesNoNetworkCall(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	client := NewClient(testProvider(false, ts.URL))
	sess := fakeSession{"allaccess-example-state": "expected-state-expected-state-00"}

	for _, query := range []url.Values{
		{"code": {"c"}, "state": {"attacker-state-attacker-state-00"}},
		{"code": {"c"}},               // missing state
		{"state": {"expected-state-expected-state-00"}}, // missing code
	} {
		raw := client.AccessToken(query, sess, "https://app.example/cb")
		assert.Equal(t, "", raw)
	}

	// No stored state at all.
	raw := client.AccessToken(url.Values{"code": {"c"}, "state": {"s"}}, fakeSession{}, "https://app.example/cb")
	assert.Equal(t, "", raw)

	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestOAuth2AccessTokenExchange(t *testing.T) {
	var form url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123"}`))
	}))
	defer ts.Close()

	client := NewClient(testProvider(false, ts.URL))
	sess := fakeSession{"allaccess-example-state": "state-value-state-value-state-00"}
	query := url.Values{"code": {"authcode"}, "state": {"state-value-state-value-state-00"}}

	raw := client.AccessToken(query, sess, "https://app.example/cb")
	assert.Equal(t, `{"access_token":"tok123"}`, raw)
	assert.Equal(t, "tok123", ParseOAuth2Token(raw))

	assert.Equal(t, "ck", form.Get("client_id"))
	assert.Equal(t, "cs", form.Get("client_secret"))
	assert.Equal(t, "authcode", form.Get("code"))
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "https://app.example/cb", form.Get("redirect_uri"))
}

func TestOAuth2ProfileInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok123", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 100}`))
	}))
	defer ts.Close()

	client := NewClient(testProvider(false, ts.URL))
	info := client.ProfileInfo(`{"access_token":"tok123"}`)
	require.NotNil(t, info)
	assert.Equal(t, "100", LookupPath(info, "id"))

	// No token parsed from the raw response means no call is attempted.
	assert.Nil(t, client.ProfileInfo(""))
	assert.Nil(t, client.ProfileInfo("garbage"))
}

func TestOAuth2ProfileInfoErrorCollapsesToNil(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	client := NewClient(testProvider(false, ts.URL))
	assert.Nil(t, client.ProfileInfo(`{"access_token":"tok123"}`))

	// Dead endpoint behaves the same as an erroring one.
	ts.Close()
	assert.Nil(t, client.ProfileInfo(`{"access_token":"tok123"}`))
}

func TestOAuth1RedirectURLFetchesRequestToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth := r.Header.Get("Authorization")
		assert.Contains(t, auth, `oauth_consumer_key="ck"`)
		assert.Contains(t, auth, "oauth_callback=")
		assert.NotContains(t, auth, "oauth_verifier=")
		w.Write([]byte("oauth_token=rt&oauth_token_secret=rs"))
	}))
	defer ts.Close()

	sess := fakeSession{}
	client := NewClient(testProvider(true, ts.URL))

	redirect, err := client.RedirectURL(sess, "https://app.example/auth/example/callback")
	require.NoError(t, err)
	assert.Contains(t, redirect, "/authorize?")
	assert.Contains(t, redirect, "oauth_token=rt")

	// The raw response survives the redirect via the session.
	assert.Equal(t, "oauth_token=rt&oauth_token_secret=rs", sess["allaccess-example-request-token"])
}

func TestOAuth1RedirectURLFailsWithoutToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewClient(testProvider(true, ts.URL))
	_, err := client.RedirectURL(fakeSession{}, "https://app.example/cb")
	assert.Error(t, err)
}

func TestOAuth1MissingVerifierMakesNoNetworkCall(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	client := NewClient(testProvider(true, ts.URL))
	sess := fakeSession{"allaccess-example-request-token": "oauth_token=rt&oauth_token_secret=rs"}

	raw := client.AccessToken(url.Values{}, sess, "https://app.example/cb")
	assert.Equal(t, "", raw)

	// Missing session token also aborts before any call.
	raw = client.AccessToken(url.Values{"oauth_verifier": {"v"}}, fakeSession{}, "https://app.example/cb")
	assert.Equal(t, "", raw)

	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestOAuth1AccessTokenExchange(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.Contains(t, auth, `oauth_token="rt"`)
		assert.Contains(t, auth, `oauth_verifier="v123"`)
		w.Write([]byte("oauth_token=at&oauth_token_secret=as"))
	}))
	defer ts.Close()

	client := NewClient(testProvider(true, ts.URL))
	sess := fakeSession{"allaccess-example-request-token": "oauth_token=rt&oauth_token_secret=rs"}

	raw := client.AccessToken(url.Values{"oauth_verifier": {"v123"}}, sess, "https://app.example/cb")
	assert.Equal(t, "oauth_token=at&oauth_token_secret=as", raw)
}

func TestOAuth1ProfileInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.Contains(t, auth, `oauth_token="at"`)
		if strings.Contains(r.URL.Path, "profile") {
			w.Write([]byte(`{"id": 42}`))
		}
	}))
	defer ts.Close()

	client := NewClient(testProvider(true, ts.URL))
	info := client.ProfileInfo("oauth_token=at&oauth_token_secret=as")
	require.NotNil(t, info)
	assert.Equal(t, "42", LookupPath(info, "id"))

	assert.Nil(t, client.ProfileInfo(""))
}

func TestAPIClientProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7}`))
	}))
	defer ts.Close()

	api := NewAPIClient(testProvider(false, ts.URL), `{"access_token":"tok"}`)
	info := api.Profile()
	require.NotNil(t, info)
	assert.Equal(t, "7", LookupPath(info, "id"))
}
