// Package auth signs the user in with the identity provider and keeps a
// fresh identity token available for backend requests.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenURL    = "https://securetoken.googleapis.com/v1/token"
)

// ErrMissingAPIKey is returned when the provider has no API key configured.
var ErrMissingAPIKey = errors.New("identity provider API key is not configured")

// Token is the credential pair returned by the identity provider.
type Token struct {
	IDToken      string
	RefreshToken string
	Expiry       time.Time
}

// Identity is the identity provider surface the session depends on.
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*Token, error)
	SignUp(ctx context.Context, email, password string) (*Token, error)
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// ProviderError is a rejection reported by the identity provider.
type ProviderError struct {
	StatusCode int
	Code       string
}

func (e *ProviderError) Error() string {
	switch e.Code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return "invalid email or password"
	case "EMAIL_EXISTS":
		return "an account with this email already exists"
	case "USER_DISABLED":
		return "this account has been disabled"
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND":
		return "your session has expired; please log in again"
	}
	if e.Code == "" {
		return fmt.Sprintf("identity provider error: HTTP %d", e.StatusCode)
	}
	return "identity provider error: " + e.Code
}

// Expired reports whether the error means the stored credential is no longer usable.
func (e *ProviderError) Expired() bool {
	switch e.Code {
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND", "USER_DISABLED":
		return true
	}
	return false
}

// Provider talks to the Firebase Authentication REST API.
type Provider struct {
	APIKey      string
	IdentityURL string
	TokenURL    string
	HTTPClient  *http.Client
}

// NewProvider returns a provider using the public endpoints.
func NewProvider(apiKey string) *Provider {
	return &Provider{
		APIKey:      apiKey,
		IdentityURL: DefaultIdentityURL,
		TokenURL:    DefaultTokenURL,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type passwordResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges an email and password for a token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Token, error) {
	return p.password(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates an account and returns its first token.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*Token, error) {
	return p.password(ctx, "accounts:signUp", email, password)
}

func (p *Provider) password(ctx context.Context, method, email, password string) (*Token, error) {
	upload := &passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	raw, err := json.Marshal(upload)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSuffix(p.IdentityURL, "/") + "/" + method
	resp := new(passwordResponse)
	if err := p.do(ctx, endpoint, "application/json", bytes.NewReader(raw), resp); err != nil {
		return nil, err
	}
	return newToken(resp.IDToken, resp.RefreshToken, resp.ExpiresIn), nil
}

// Refresh exchanges a refresh token for a new identity token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	resp := new(refreshResponse)
	err := p.do(ctx, p.TokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), resp)
	if err != nil {
		return nil, err
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	return newToken(resp.IDToken, resp.RefreshToken, resp.ExpiresIn), nil
}

func (p *Provider) do(ctx context.Context, endpoint, contentType string, body io.Reader, download interface{}) error {
	if p.APIKey == "" {
		return ErrMissingAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("error creating identity request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", p.APIKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", contentType)

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error connecting to identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		perr := &ProviderError{StatusCode: resp.StatusCode}
		elt := new(errorResponse)
		if json.NewDecoder(resp.Body).Decode(elt) == nil {
			// messages look like "WEAK_PASSWORD : Password should be at least 6 characters"
			perr.Code = strings.TrimSpace(strings.SplitN(elt.Error.Message, ":", 2)[0])
		}
		log.WithField("status", resp.StatusCode).WithField("code", perr.Code).Debug("identity provider rejected request")
		return perr
	}
	if err := json.NewDecoder(resp.Body).Decode(download); err != nil {
		return fmt.Errorf("failed to parse identity provider response: %w", err)
	}
	return nil
}

func newToken(idToken, refreshToken, expiresIn string) *Token {
	tok := &Token{IDToken: idToken, RefreshToken: refreshToken}
	if exp, err := expiryOf(idToken); err == nil {
		tok.Expiry = exp
	} else if secs, err := strconv.Atoi(expiresIn); err == nil {
		tok.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return tok
}
