// Package reddit fetches search results and comment trees from the Reddit
// API using application-only OAuth.
package reddit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ibeckermayer/threadgraph/internal/auth"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

const (
	DefaultUserAgent = "Default Agent"
	DefaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIURL    = "https://oauth.reddit.com"
)

// Credentials identify the registered Reddit application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit api error: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client talks to the Reddit API. It is not safe for concurrent use.
type Client struct {
	creds    Credentials
	http     *resty.Client
	apiURL   string
	tokenURL string
	tokens   *auth.TokenStore
	token    auth.Token
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURLs overrides the API and token endpoints.
func WithURLs(apiURL, tokenURL string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimRight(apiURL, "/")
		c.tokenURL = tokenURL
	}
}

// WithTokenStore persists tokens between runs.
func WithTokenStore(ts *auth.TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = resty.NewWithClient(hc) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the given application credentials.
func New(creds Credentials, opts ...Option) (*Client, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("client id is required: %w", types.ErrInvalidArgument)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required: %w", types.ErrInvalidArgument)
	}
	if creds.UserAgent == "" {
		creds.UserAgent = DefaultUserAgent
	}

	c := &Client{
		creds:    creds,
		http:     resty.New(),
		apiURL:   DefaultAPIURL,
		tokenURL: DefaultTokenURL,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.SetHeader("User-Agent", creds.UserAgent)
	c.http.SetTimeout(30 * time.Second)

	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a usable token, reusing the in-memory or stored one
// when it has not expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	now := c.now()
	if c.token.Valid(c.creds.ClientID, now) {
		return c.token.AccessToken, nil
	}
	if c.tokens != nil {
		if stored, err := c.tokens.Load(); err == nil && stored.Valid(c.creds.ClientID, now) {
			c.token = *stored
			return c.token.AccessToken, nil
		}
	}

	var tr tokenResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tr).
		Post(c.tokenURL)
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", &APIError{StatusCode: res.StatusCode(), URL: c.tokenURL, Body: res.String()}
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response did not contain an access token")
	}

	c.token = auth.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		ClientID:    c.creds.ClientID,
		ObtainedAt:  now,
		ExpiresAt:   now.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	c.log.Debug().Time("expires_at", c.token.ExpiresAt).Msg("obtained access token")

	if c.tokens != nil {
		if err := c.tokens.Save(c.token); err != nil {
			c.log.Warn().Err(err).Msg("could not persist access token")
		}
	}
	return c.token.AccessToken, nil
}

// get performs an authenticated GET against the API and returns the body.
func (c *Client) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := c.apiURL + path
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() == http.StatusUnauthorized {
		c.token = auth.Token{}
		if c.tokens != nil {
			_ = c.tokens.Clear()
		}
	}
	if res.IsError() {
		return nil, &APIError{StatusCode: res.StatusCode(), URL: url, Body: res.String()}
	}
	return res.Body(), nil
}
