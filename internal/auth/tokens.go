package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ibeckermayer/threadgraph/internal/config"
)

// expiryMargin is subtracted from a token's lifetime so it is never used in
// the last moments before Reddit rejects it.
const expiryMargin = time.Minute

// Token is an application-only OAuth access token
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ClientID    string    `json:"client_id"`
	ObtainedAt  time.Time `json:"obtained_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token belongs to clientID and is still usable at now.
func (t Token) Valid(clientID string, now time.Time) bool {
	if t.AccessToken == "" || t.ClientID != clientID {
		return false
	}
	return now.Add(expiryMargin).Before(t.ExpiresAt)
}

// TokenStore persists the last OAuth token so repeated runs can reuse it
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store at the given path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultTokenStorePath returns the default path for token storage
func DefaultTokenStorePath() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "token.json"), nil
}

// Save persists the token to disk
func (ts *TokenStore) Save(t Token) error {
	if err := os.MkdirAll(filepath.Dir(ts.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ts.path, data, 0600)
}

// Load retrieves the token from disk
func (ts *TokenStore) Load() (*Token, error) {
	data, err := os.ReadFile(ts.path)
	if err != nil {
		return nil, err
	}

	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// IsValid checks if the stored token is still usable for clientID
func (ts *TokenStore) IsValid(clientID string) bool {
	t, err := ts.Load()
	if err != nil {
		return false
	}
	return t.Valid(clientID, time.Now())
}

// Clear removes the stored token
func (ts *TokenStore) Clear() error {
	err := os.Remove(ts.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
