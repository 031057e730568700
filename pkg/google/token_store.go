package google

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenStore persists the single Google credential of this installation
// together with the OAuth state nonce used during the consent flow.
type TokenStore interface {
	// Load returns the stored credential, or (nil, nil) when none is stored.
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
	Clear(ctx context.Context) error

	// StoreNonce resets the credential row and records a fresh consent nonce.
	StoreNonce(ctx context.Context, nonce string) error
	// SaveForNonce stores the exchanged token only if the nonce matches the
	// one recorded by StoreNonce.
	SaveForNonce(ctx context.Context, nonce string, token *oauth2.Token) error
}

type SQLTokenStore struct {
	db *sql.DB
}

func NewSQLTokenStore(db *sql.DB) *SQLTokenStore {
	return &SQLTokenStore{db: db}
}

func (s *SQLTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	var accessToken, refreshToken sql.NullString
	var expiryTimestamp sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT access_token, refresh_token, expiry FROM google_calendar_auth WHERE id = 1").
		Scan(&accessToken, &refreshToken, &expiryTimestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if !accessToken.Valid || accessToken.String == "" {
		// Row exists but holds only a pending consent nonce.
		return nil, nil
	}

	token.AccessToken = accessToken.String
	token.RefreshToken = refreshToken.String
	if expiryTimestamp.Valid {
		token.Expiry = time.Unix(expiryTimestamp.Int64, 0)
	}
	return &token, nil
}

func (s *SQLTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	query := `INSERT INTO google_calendar_auth (id, access_token, refresh_token, expiry) VALUES (1, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET access_token = ?, refresh_token = ?, expiry = ?`
	expiry := token.Expiry.Unix()
	_, err := s.db.ExecContext(ctx, query,
		token.AccessToken, token.RefreshToken, expiry,
		token.AccessToken, token.RefreshToken, expiry)
	if err != nil {
		return fmt.Errorf("unable to store Google auth token: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM google_calendar_auth WHERE id = 1"); err != nil {
		return fmt.Errorf("unable to clear Google auth token: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) StoreNonce(ctx context.Context, nonce string) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO google_calendar_auth (id, nonce) VALUES (1, ?)", nonce)
	if err != nil {
		return fmt.Errorf("unable to store Google auth nonce: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) SaveForNonce(ctx context.Context, nonce string, token *oauth2.Token) error {
	query := `UPDATE google_calendar_auth SET access_token = ?, refresh_token = ?, expiry = ?, nonce = NULL
				WHERE id = 1 AND nonce = ?`
	result, err := s.db.ExecContext(ctx, query,
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		return fmt.Errorf("unable to store Google auth token for nonce: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Warnf("no pending Google auth row for nonce %s", nonce)
		return errors.New("unknown or expired authorization state")
	}
	return nil
}

// MemoryTokenStore is an in-memory TokenStore for tests.
type MemoryTokenStore struct {
	token *oauth2.Token
	nonce string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	if s.token == nil {
		return nil, nil
	}
	copied := *s.token
	return &copied, nil
}

func (s *MemoryTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	copied := *token
	s.token = &copied
	return nil
}

func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.token = nil
	s.nonce = ""
	return nil
}

func (s *MemoryTokenStore) StoreNonce(ctx context.Context, nonce string) error {
	s.token = nil
	s.nonce = nonce
	return nil
}

func (s *MemoryTokenStore) SaveForNonce(ctx context.Context, nonce string, token *oauth2.Token) error {
	if s.nonce != nonce {
		return errors.New("unknown or expired authorization state")
	}
	s.nonce = ""
	return s.Save(ctx, token)
}
