package google

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tressly/tressly/internal/config"
	"github.com/tressly/tressly/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// expirySkew is subtracted from the stored expiry so a token is refreshed
// shortly before Google would reject it.
const expirySkew = 30 * time.Second

// TokenManager owns the OAuth2 authorization-code and refresh-token flows.
// It hands out a currently valid access token, refreshing silently when the
// stored one has expired. No retries happen here; retry policy belongs to the
// callers.
type TokenManager struct {
	store       TokenStore
	oauthConfig *oauth2.Config
	clock       utils.Clock
}

func NewTokenManager(store TokenStore, cfg config.Application, clock utils.Clock) *TokenManager {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope},
	}
	return &TokenManager{store: store, oauthConfig: oauthConfig, clock: clock}
}

// newTokenManagerWithConfig lets tests point the manager at a fake provider.
func newTokenManagerWithConfig(store TokenStore, oauthConfig *oauth2.Config, clock utils.Clock) *TokenManager {
	return &TokenManager{store: store, oauthConfig: oauthConfig, clock: clock}
}

// AuthCodeURL builds the consent-screen URL. Offline access plus forced
// consent makes Google issue a refresh token even on re-consent.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades the authorization code for tokens and persists them
// against the pending consent nonce.
func (m *TokenManager) ExchangeCode(ctx context.Context, code, nonce string) (*oauth2.Token, error) {
	token, err := m.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthExchange, err)
	}
	if err := m.store.SaveForNonce(ctx, nonce, token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthExchange, err)
	}
	return token, nil
}

// ValidToken returns a currently valid access token, or (nil, nil) when the
// installation is not connected. An expired token is refreshed in place; if
// the refresh is rejected (revoked grant) the credential is cleared so the
// host can prompt for reauthorization.
func (m *TokenManager) ValidToken(ctx context.Context) (*oauth2.Token, error) {
	token, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}

	if token.Expiry.IsZero() || m.clock.Now().Before(token.Expiry.Add(-expirySkew)) {
		return token, nil
	}

	if token.RefreshToken == "" {
		log.Warn("Google access token expired and no refresh token is stored, disconnecting")
		if err := m.store.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	fresh, err := m.refresh(ctx, token)
	if err != nil {
		log.Warnf("%v: %v, disconnecting", ErrAuthRefresh, err)
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}
	return fresh, nil
}

func (m *TokenManager) refresh(ctx context.Context, stale *oauth2.Token) (*oauth2.Token, error) {
	// Blanking the access token forces TokenSource to perform exactly one
	// refresh-token grant instead of trusting the stale token.
	seed := *stale
	seed.AccessToken = ""
	fresh, err := m.oauthConfig.TokenSource(ctx, &seed).Token()
	if err != nil {
		return nil, err
	}

	// Providers are not required to rotate the refresh token; keep the old
	// one when the response omits it.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = stale.RefreshToken
	}
	if err := m.store.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Connected reports whether a credential is stored. It does not validate the
// credential against the provider.
func (m *TokenManager) Connected(ctx context.Context) (bool, error) {
	token, err := m.store.Load(ctx)
	if err != nil {
		return false, err
	}
	return token != nil, nil
}

// Disconnect clears the stored credential. Best-effort local-only logout;
// no remote revocation call is made.
func (m *TokenManager) Disconnect(ctx context.Context) error {
	return m.store.Clear(ctx)
}
