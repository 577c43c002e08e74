package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/dsahelper/dsahelper/store"
)

// ErrNotAuthenticated means no identity credential is available.
var ErrNotAuthenticated = errors.New("user is not authenticated; please log in to continue")

// Session tracks whether a user is signed in and hands out identity tokens.
// Tokens are persisted so a later run starts signed in.
type Session struct {
	identity Identity
	kv       store.KV

	mu    sync.Mutex
	token *oauth2.Token
	user  *User
}

// NewSession builds a signed-out session. Call Init to restore a persisted sign-in.
func NewSession(identity Identity, kv store.KV) *Session {
	return &Session{identity: identity, kv: kv}
}

type refresher struct {
	ctx      context.Context
	identity Identity
	refresh  string
}

func (r *refresher) Token() (*oauth2.Token, error) {
	if r.refresh == "" {
		return nil, ErrNotAuthenticated
	}
	tok, err := r.identity.Refresh(r.ctx, r.refresh)
	if err != nil {
		return nil, err
	}
	log.Debug("identity token refreshed")
	return oauthToken(tok), nil
}

func oauthToken(tok *Token) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  tok.IDToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       tok.Expiry,
	}
}

// Init restores the persisted credential and refreshes it if it has expired.
// A credential the provider no longer accepts is discarded.
func (s *Session) Init(ctx context.Context) error {
	idToken, _, err := s.kv.Get(store.KeyIDToken)
	if err != nil {
		return err
	}
	refresh, _, err := s.kv.Get(store.KeyRefreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.user = nil, nil
	if idToken == "" && refresh == "" {
		return nil
	}
	tok := &oauth2.Token{AccessToken: idToken, RefreshToken: refresh, TokenType: "Bearer"}
	if exp, err := expiryOf(idToken); err == nil {
		tok.Expiry = exp
	} else {
		tok.AccessToken = ""
	}
	s.token = tok
	s.user, _ = userOf(idToken)

	if _, err := s.currentLocked(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		log.WithError(err).Warn("unable to refresh identity token")
	}
	return nil
}

// Authenticated reports whether a credential is held.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// User returns the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked()
}

func (s *Session) userLocked() *User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignIn signs in with an email and password.
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, error) {
	tok, err := s.identity.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return s.adopt(tok)
}

// SignUp creates an account and signs in with it.
func (s *Session) SignUp(ctx context.Context, email, password string) (*User, error) {
	tok, err := s.identity.SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return s.adopt(tok)
}

func (s *Session) adopt(tok *Token) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(oauthToken(tok)); err != nil {
		return nil, err
	}
	return s.userLocked(), nil
}

// SignOut forgets the persisted credential.
func (s *Session) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Session) clearLocked() error {
	s.token, s.user = nil, nil
	if err := s.kv.Delete(store.KeyIDToken); err != nil {
		return err
	}
	return s.kv.Delete(store.KeyRefreshToken)
}

func (s *Session) saveLocked(tok *oauth2.Token) error {
	if err := s.kv.Set(store.KeyIDToken, tok.AccessToken); err != nil {
		return err
	}
	if err := s.kv.Set(store.KeyRefreshToken, tok.RefreshToken); err != nil {
		return err
	}
	s.token = tok
	if u, err := userOf(tok.AccessToken); err == nil {
		s.user = u
	}
	return nil
}

// IDToken returns a valid identity token, refreshing it first if it has expired.
func (s *Session) IDToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(ctx)
}

func (s *Session) currentLocked(ctx context.Context) (string, error) {
	if s.token == nil {
		return "", ErrNotAuthenticated
	}
	src := oauth2.ReuseTokenSource(s.token, &refresher{ctx: ctx, identity: s.identity, refresh: s.token.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Expired() || errors.Is(err, ErrNotAuthenticated) {
			log.Info("stored sign-in is no longer valid")
			if cerr := s.clearLocked(); cerr != nil {
				return "", cerr
			}
			return "", ErrNotAuthenticated
		}
		return "", err
	}
	if tok.AccessToken != s.token.AccessToken {
		if err := s.saveLocked(tok); err != nil {
			return "", err
		}
	}
	return tok.AccessToken, nil
}
