// internal/app/system/idp/idp.go
//
// Client for the token-based identity provider. The provider is a black box
// reached over JSON/REST: it issues short-lived bearer tokens (plus refresh
// tokens), answers "who holds this token", and hosts the external sign-in
// page used by the redirect flow.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrInvalidCredentials is returned when the provider rejects an
// email/password pair. Handlers show a friendly form error for it instead
// of a server-error page.
var ErrInvalidCredentials = errors.New("idp: invalid credentials")

// ErrNoSession is returned when the provider has no identity for the token.
var ErrNoSession = errors.New("idp: no active session")

// Config identifies this app to the provider. Both values are injected
// constants from app configuration; their format is opaque here.
type Config struct {
	BaseURL   string
	APIKey    string
	ProjectID string
}

// Session is the result of a successful credential exchange: the identity
// for display plus the bearer token to attach to backend calls.
type Session struct {
	Identity models.Identity
	Token    *oauth2.Token
}

// Client talks to the identity provider.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New constructs a provider Client.
func New(cfg Config, logger *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  logger,
	}
}

// tokenPayload is the provider's token envelope.
type tokenPayload struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         models.Identity `json:"user"`
}

func (p tokenPayload) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
	if p.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(p.ExpiresIn) * time.Second)
	}
	return tok
}

// SignIn exchanges an email/password pair for a session.
// POST /v1/sessions
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var payload tokenPayload
	if err := c.post(ctx, "/v1/sessions", body, &payload); err != nil {
		return nil, err
	}
	payload.User.Provider = models.ProviderPassword
	return &Session{Identity: payload.User, Token: payload.token()}, nil
}

// SignUp registers a new account and signs it in.
// POST /v1/accounts
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var payload tokenPayload
	if err := c.post(ctx, "/v1/accounts", body, &payload); err != nil {
		return nil, err
	}
	payload.User.Provider = models.ProviderPassword
	return &Session{Identity: payload.User, Token: payload.token()}, nil
}

// SendPasswordReset asks the provider to email a reset link. The provider
// responds identically whether or not the address exists.
// POST /v1/password-resets
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/password-resets", map[string]string{"email": email}, nil)
}

// Refresh trades a refresh token for a fresh bearer token. Re-issuance is
// idempotent on the provider side, so an overlapping refresh is harmless.
// POST /v1/token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}
	var payload tokenPayload
	if err := c.post(ctx, "/v1/token", body, &payload); err != nil {
		return nil, err
	}
	tok := payload.token()
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

// Me returns the identity holding the given access token, or ErrNoSession.
// GET /v1/me
func (c *Client) Me(ctx context.Context, accessToken string) (*models.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("idp: me: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrNoSession
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("idp: me returned %d", resp.StatusCode)
	}

	var id models.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("idp: decode identity: %w", err)
	}
	if id.Provider == "" {
		id.Provider = models.ProviderPassword
	}
	return &id, nil
}

// AuthorizeURL builds the provider's hosted sign-in page URL. After the
// user authenticates there, the provider redirects back to redirectURI with
// a one-time session_id for the backend exchange.
func (c *Client) AuthorizeURL(redirectURI string) string {
	vals := url.Values{}
	vals.Set("project_id", c.cfg.ProjectID)
	vals.Set("redirect", redirectURI)
	return c.cfg.BaseURL + "/v1/authorize?" + vals.Encode()
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("idp: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("idp: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("idp: %s returned %d", path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("idp: decode response: %w", err)
	}
	return nil
}

func (c *Client) decorate(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}
}
