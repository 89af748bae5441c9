package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"golang.org/x/oauth2"
)

// AuthType names the authorization protocol a provider speaks.
type AuthType string

const (
	AuthTypeOAuth2  AuthType = "OAuth 2.0"
	AuthTypeOAuth1a AuthType = "OAuth 1.0a"
)

// NormalizeFunc turns a provider token response into a domain.Credential.
type NormalizeFunc func(token *oauth2.Token) (*domain.Credential, error)

// Descriptor is the static description of one provider. Everything that differs
// between providers lives here so the handshake engine never branches on the
// provider name.
type Descriptor struct {
	Provider    domain.Provider
	DisplayName string
	Description string
	AuthType    AuthType

	// Implemented is false for providers whose flow is not wired yet. Their
	// handshakes are refused before any state is issued.
	Implemented bool

	Endpoint oauth2.Endpoint
	Scopes   []string

	// ScopeDelimiter joins Scopes in the authorization URL. Some providers
	// expect commas instead of the RFC 6749 space.
	ScopeDelimiter string

	// ExtraParams are appended verbatim to the authorization URL.
	ExtraParams map[string]string

	Normalize NormalizeFunc
}

// Config holds the deployment-specific settings for one provider. Empty URL
// fields fall back to the descriptor's endpoint.
type Config struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
}

// Client performs the OAuth2 authorization-code flow for a single provider.
type Client struct {
	desc       Descriptor
	conf       *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration
}

func newClient(desc Descriptor, cfg Config, redirectURL string, httpClient *http.Client, timeout time.Duration) *Client {
	endpoint := desc.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &Client{
		desc: desc,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
		},
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// Descriptor returns the static description of the client's provider.
func (c *Client) Descriptor() Descriptor {
	return c.desc
}

// AuthCodeURL builds the URL the user is sent to in order to grant access.
func (c *Client) AuthCodeURL(state string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(c.desc.ExtraParams)+1)
	if len(c.desc.Scopes) > 0 {
		delim := c.desc.ScopeDelimiter
		if delim == "" {
			delim = " "
		}
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(c.desc.Scopes, delim)))
	}
	for k, v := range c.desc.ExtraParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}

	return c.conf.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens and normalizes the result.
// Failures are reported as *domain.TokenExchangeError and are never retried:
// authorization codes are single-use.
func (c *Client) Exchange(ctx context.Context, code string) (*domain.Credential, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		exchangeErr := &domain.TokenExchangeError{Provider: c.desc.Provider, Err: err}

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			exchangeErr.StatusCode = retrieveErr.Response.StatusCode
		}

		return nil, exchangeErr
	}

	cred, err := c.desc.Normalize(token)
	if err != nil {
		return nil, &domain.TokenExchangeError{
			Provider: c.desc.Provider,
			Err:      fmt.Errorf("unexpected token response: %w", err),
		}
	}

	return cred, nil
}

func expiryPtr(token *oauth2.Token) *time.Time {
	if token.Expiry.IsZero() {
		return nil
	}
	expiry := token.Expiry.UTC()
	return &expiry
}

// idString formats a numeric or string identifier from a decoded JSON payload.
func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return fmt.Sprintf("%.0f", id), true
	case int64:
		return fmt.Sprintf("%d", id), true
	case int:
		return fmt.Sprintf("%d", id), true
	}
	return "", false
}
