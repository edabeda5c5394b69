// Package auth issues and verifies API tokens for mutating endpoints.
// Tokens are random secrets shown once at creation; only bcrypt hashes are
// stored, with a short plaintext prefix for lookup.
package auth

import (
	"context"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

// Authentication error codes surfaced to the HTTP layer.
const (
	ErrCodeMissingToken = "missing_token"
	ErrCodeInvalidToken = "invalid_token"
	ErrCodeNoTokens     = "no_tokens_issued"
	ErrCodeUnavailable  = "auth_unavailable"
)

// Result is the outcome of an authentication attempt.
type Result struct {
	Authenticated bool
	TokenID       string
	TokenName     string
	ErrorCode     string
	ErrorMessage  string
}

// Manager handles token issuance and verification against the token store.
type Manager struct {
	store  *storage.TokenStore
	logger *logging.Logger
}

// NewManager creates a token manager.
func NewManager(store *storage.TokenStore, logger *logging.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Create issues a new token. The raw token is returned exactly once; only its
// hash is persisted. The returned record has the hash redacted.
func (m *Manager) Create(ctx context.Context, name string) (*storage.TokenRecord, string, error) {
	id, err := GenerateTokenID()
	if err != nil {
		return nil, "", err
	}

	rawToken, prefix, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}

	tokenHash, err := HashToken(rawToken)
	if err != nil {
		return nil, "", err
	}

	rec := &storage.TokenRecord{
		ID:          id,
		Name:        name,
		TokenHash:   tokenHash,
		TokenPrefix: prefix,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, "", err
	}

	m.logger.Info("API token created", map[string]interface{}{
		"token_id": rec.ID,
		"name":     rec.Name,
	})

	rec.TokenHash = ""
	return rec, rawToken, nil
}

// Authenticate validates a bearer token. When no token has ever been issued,
// authentication is refused outright so that mutating endpoints stay disabled
// on fresh installations.
func (m *Manager) Authenticate(ctx context.Context, token string) *Result {
	result := &Result{}

	hasTokens, err := m.store.HasActiveTokens(ctx)
	if err != nil {
		m.logger.Error("Failed to check for active tokens", map[string]interface{}{
			"error": err.Error(),
		})
		result.ErrorCode = ErrCodeUnavailable
		result.ErrorMessage = "Authentication unavailable"
		return result
	}
	if !hasTokens {
		result.ErrorCode = ErrCodeNoTokens
		result.ErrorMessage = "No API token has been issued; run 'modeldocs token create' first"
		return result
	}

	if token == "" {
		result.ErrorCode = ErrCodeMissingToken
		result.ErrorMessage = "Authorization header required"
		return result
	}

	if !IsValidTokenFormat(token) {
		result.ErrorCode = ErrCodeInvalidToken
		result.ErrorMessage = "Invalid API token"
		return result
	}

	rec, err := m.store.GetByPrefix(ctx, ExtractTokenPrefix(token))
	if err == storage.ErrTokenNotFound {
		result.ErrorCode = ErrCodeInvalidToken
		result.ErrorMessage = "Invalid API token"
		return result
	}
	if err != nil {
		m.logger.Error("Failed to look up token", map[string]interface{}{
			"error": err.Error(),
		})
		result.ErrorCode = ErrCodeUnavailable
		result.ErrorMessage = "Authentication unavailable"
		return result
	}

	if !VerifyToken(token, rec.TokenHash) {
		result.ErrorCode = ErrCodeInvalidToken
		result.ErrorMessage = "Invalid API token"
		return result
	}

	// Update last used timestamp (async, don't block the request)
	go m.updateLastUsed(rec.ID)

	result.Authenticated = true
	result.TokenID = rec.ID
	result.TokenName = rec.Name
	return result
}

func (m *Manager) updateLastUsed(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.UpdateLastUsed(ctx, id); err != nil {
		m.logger.Warn("Failed to update token last used", map[string]interface{}{
			"token_id": id,
			"error":    err.Error(),
		})
	}
}

// List returns token records with hashes redacted.
func (m *Manager) List(ctx context.Context, includeRevoked bool) ([]storage.TokenRecord, error) {
	records, err := m.store.List(ctx, includeRevoked)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].TokenHash = ""
	}
	return records, nil
}

// Revoke disables a token. Malformed ids are reported as not found without
// touching the store.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if !IsValidTokenIDFormat(id) {
		return storage.ErrTokenNotFound
	}
	if err := m.store.Revoke(ctx, id); err != nil {
		return err
	}
	m.logger.Info("API token revoked", map[string]interface{}{
		"token_id": id,
	})
	return nil
}

// Delete permanently removes a token record.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !IsValidTokenIDFormat(id) {
		return storage.ErrTokenNotFound
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("API token deleted", map[string]interface{}{
		"token_id": id,
	})
	return nil
}
