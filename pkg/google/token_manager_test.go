package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tressly/tressly/internal/utils"
	"golang.org/x/oauth2"
)

func newTestManager(t *testing.T, store TokenStore, tokenHandler http.HandlerFunc) (*TokenManager, *utils.MockClock) {
	t.Helper()
	server := httptest.NewServer(tokenHandler)
	t.Cleanup(server.Close)

	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	oauthConfig := &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  server.URL + "/auth",
			TokenURL: server.URL + "/token",
		},
		RedirectURL: "http://localhost:8181/api/integrations/google/auth/callback",
	}
	return newTokenManagerWithConfig(store, oauthConfig, clock), clock
}

func TestValidToken_NotConnected(t *testing.T) {
	manager, _ := newTestManager(t, NewMemoryTokenStore(), func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called")
	})

	token, err := manager.ValidToken(context.Background())

	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestValidToken_StillValid(t *testing.T) {
	store := NewMemoryTokenStore()
	manager, clock := newTestManager(t, store, func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called for a valid token")
	})
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{
		AccessToken:  "live-token",
		RefreshToken: "refresh-token",
		Expiry:       clock.Now().Add(1 * time.Hour),
	}))

	token, err := manager.ValidToken(context.Background())

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "live-token", token.AccessToken)
}

func TestValidToken_RefreshesExpired(t *testing.T) {
	store := NewMemoryTokenStore()
	refreshCalls := 0
	manager, clock := newTestManager(t, store, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-token", r.Form.Get("refresh_token"))
		refreshCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	})
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		Expiry:       clock.Now().Add(-1 * time.Minute),
	}))

	token, err := manager.ValidToken(context.Background())

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "fresh-token", token.AccessToken)
	assert.Equal(t, 1, refreshCalls)

	// The refreshed token is persisted, and the refresh token survives a
	// response that omitted it.
	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "fresh-token", stored.AccessToken)
	assert.Equal(t, "refresh-token", stored.RefreshToken)
}

func TestValidToken_RefreshesInsideSkewWindow(t *testing.T) {
	store := NewMemoryTokenStore()
	manager, clock := newTestManager(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	})
	// Not yet expired, but within the skew window.
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		Expiry:       clock.Now().Add(10 * time.Second),
	}))

	token, err := manager.ValidToken(context.Background())

	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "fresh-token", token.AccessToken)
}

func TestValidToken_RevokedRefreshClearsCredential(t *testing.T) {
	store := NewMemoryTokenStore()
	manager, clock := newTestManager(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "revoked-refresh",
		Expiry:       clock.Now().Add(-1 * time.Minute),
	}))

	token, err := manager.ValidToken(context.Background())

	require.NoError(t, err)
	assert.Nil(t, token)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestValidToken_ExpiredWithoutRefreshTokenDisconnects(t *testing.T) {
	store := NewMemoryTokenStore()
	manager, clock := newTestManager(t, store, func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called without a refresh token")
	})
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{
		AccessToken: "stale-token",
		Expiry:      clock.Now().Add(-1 * time.Minute),
	}))

	token, err := manager.ValidToken(context.Background())

	require.NoError(t, err)
	assert.Nil(t, token)

	connected, err := manager.Connected(context.Background())
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestDisconnect(t *testing.T) {
	store := NewMemoryTokenStore()
	manager, _ := newTestManager(t, store, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{AccessToken: "live-token"}))

	require.NoError(t, manager.Disconnect(context.Background()))

	connected, err := manager.Connected(context.Background())
	require.NoError(t, err)
	assert.False(t, connected)
}
