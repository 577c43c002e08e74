package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsahelper/dsahelper/store"
)

type memKV struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemKV() *memKV { return &memKV{m: map[string]string{}} }

func (kv *memKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *memKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

func (kv *memKV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.m, key)
	return nil
}

func signToken(t *testing.T, uid, email string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uid,
		"sub":     uid,
		"email":   email,
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type fakeIdentity struct {
	t         *testing.T
	srv       *httptest.Server
	refreshes atomic.Int32
	// refreshCode, when set, makes the token endpoint reject every refresh
	refreshCode string
}

func newFakeIdentity(t *testing.T) (*fakeIdentity, *Provider) {
	f := &fakeIdentity{t: t}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	p := NewProvider("test-key")
	p.IdentityURL = f.srv.URL + "/v1"
	p.TokenURL = f.srv.URL + "/token"
	return f, p
}

func (f *fakeIdentity) fail(w http.ResponseWriter, code string) {
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": 400, "message": code},
	})
}

func (f *fakeIdentity) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("key") != "test-key" {
		f.fail(w, "API_KEY_INVALID")
		return
	}
	switch r.URL.Path {
	case "/v1/accounts:signInWithPassword", "/v1/accounts:signUp":
		var req passwordRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(f.t, req.ReturnSecureToken)
		if req.Password != "hunter22" {
			f.fail(w, "INVALID_LOGIN_CREDENTIALS")
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"idToken":      signToken(f.t, "uid-1", req.Email, time.Now().Add(time.Hour)),
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
		})
	case "/token":
		f.refreshes.Add(1)
		require.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "refresh_token", r.PostForm.Get("grant_type"))
		if f.refreshCode != "" {
			f.fail(w, f.refreshCode)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id_token":      signToken(f.t, "uid-1", "a@example.com", time.Now().Add(time.Hour)),
			"refresh_token": "refresh-2",
			"expires_in":    "3600",
		})
	default:
		http.NotFound(w, r)
	}
}

func TestSignInPersistsToken(t *testing.T) {
	_, provider := newFakeIdentity(t)
	kv := newMemKV()
	sess := NewSession(provider, kv)
	ctx := context.Background()

	assert.False(t, sess.Authenticated())
	_, err := sess.IDToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	user, err := sess.SignIn(ctx, " a@example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, "uid-1", user.ID)
	assert.True(t, sess.Authenticated())

	tok, err := sess.IDToken(ctx)
	require.NoError(t, err)
	stored, _, _ := kv.Get(store.KeyIDToken)
	assert.Equal(t, stored, tok)
	refresh, _, _ := kv.Get(store.KeyRefreshToken)
	assert.Equal(t, "refresh-1", refresh)

	// a new session over the same storage starts signed in
	again := NewSession(provider, kv)
	require.NoError(t, again.Init(ctx))
	assert.True(t, again.Authenticated())
	assert.Equal(t, "a@example.com", again.User().Email)
}

func TestSignInRejected(t *testing.T) {
	_, provider := newFakeIdentity(t)
	sess := NewSession(provider, newMemKV())

	_, err := sess.SignIn(context.Background(), "a@example.com", "wrong")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", perr.Code)
	assert.Equal(t, "invalid email or password", err.Error())
	assert.False(t, sess.Authenticated())
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	fake, provider := newFakeIdentity(t)
	kv := newMemKV()
	old := signToken(t, "uid-1", "a@example.com", time.Now().Add(-time.Hour))
	require.NoError(t, kv.Set(store.KeyIDToken, old))
	require.NoError(t, kv.Set(store.KeyRefreshToken, "refresh-1"))

	sess := NewSession(provider, kv)
	ctx := context.Background()
	require.NoError(t, sess.Init(ctx))
	assert.EqualValues(t, 1, fake.refreshes.Load())

	tok, err := sess.IDToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, old, tok)
	// still fresh, so no second exchange
	assert.EqualValues(t, 1, fake.refreshes.Load())

	refresh, _, _ := kv.Get(store.KeyRefreshToken)
	assert.Equal(t, "refresh-2", refresh)
}

func TestRevokedRefreshTokenSignsOut(t *testing.T) {
	fake, provider := newFakeIdentity(t)
	fake.refreshCode = "TOKEN_EXPIRED"
	kv := newMemKV()
	require.NoError(t, kv.Set(store.KeyIDToken, signToken(t, "uid-1", "a@example.com", time.Now().Add(-time.Minute))))
	require.NoError(t, kv.Set(store.KeyRefreshToken, "refresh-1"))

	sess := NewSession(provider, kv)
	require.NoError(t, sess.Init(context.Background()))
	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.User())

	_, found, _ := kv.Get(store.KeyRefreshToken)
	assert.False(t, found)
}

func TestSignOut(t *testing.T) {
	_, provider := newFakeIdentity(t)
	kv := newMemKV()
	sess := NewSession(provider, kv)
	ctx := context.Background()

	_, err := sess.SignUp(ctx, "b@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, sess.SignOut())

	assert.False(t, sess.Authenticated())
	_, err = sess.IDToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, found, _ := kv.Get(store.KeyIDToken)
	assert.False(t, found)
}

func TestMissingAPIKey(t *testing.T) {
	p := NewProvider("")
	_, err := p.SignIn(context.Background(), "a@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
