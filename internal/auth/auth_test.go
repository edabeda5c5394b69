package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	db, err := storage.Open(t.TempDir(), logging.Discard())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewManager(storage.NewTokenStore(db), logging.Discard())
}

// TestTokenGeneration tests token generation and validation
func TestTokenGeneration(t *testing.T) {
	token, prefix, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if !strings.HasPrefix(token, TokenPrefix) {
		t.Errorf("Generated token missing prefix: %s", token)
	}
	if !IsValidTokenFormat(token) {
		t.Errorf("Generated token has invalid format: %s", token)
	}
	if got := ExtractTokenPrefix(token); got != prefix {
		t.Errorf("ExtractTokenPrefix() = %s, want %s", got, prefix)
	}

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken() error = %v", err)
	}
	if !VerifyToken(token, hash) {
		t.Error("VerifyToken() returned false for correct token")
	}
	if VerifyToken("wrong_token", hash) {
		t.Error("VerifyToken() returned true for wrong token")
	}
}

// TestTokenIDGeneration tests token ID generation
func TestTokenIDGeneration(t *testing.T) {
	id, err := GenerateTokenID()
	if err != nil {
		t.Fatalf("GenerateTokenID() error = %v", err)
	}

	if !IsValidTokenIDFormat(id) {
		t.Errorf("Generated token ID has invalid format: %s", id)
	}

	// Verify uniqueness
	id2, _ := GenerateTokenID()
	if id == id2 {
		t.Error("GenerateTokenID() returned duplicate IDs")
	}
}

func TestIsValidTokenFormat(t *testing.T) {
	valid, _, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"generated token", valid, true},
		{"empty", "", false},
		{"wrong prefix", "other_sk_" + strings.Repeat("a", 64), false},
		{"too short", TokenPrefix + "abc123", false},
		{"not hex", TokenPrefix + strings.Repeat("z", 64), false},
		{"bare prefix", TokenPrefix, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTokenFormat(tt.token); got != tt.want {
				t.Errorf("IsValidTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	token := TokenPrefix + strings.Repeat("a", 64)
	masked := MaskToken(token)

	if strings.Contains(masked, strings.Repeat("a", 16)) {
		t.Errorf("Masked token leaks secret: %s", masked)
	}
	if !strings.HasPrefix(masked, TokenPrefix+"aaaaaaaa") {
		t.Errorf("Masked token should keep lookup prefix: %s", masked)
	}

	if got := MaskToken("short"); got != "****" {
		t.Errorf("MaskToken(short) = %s, want ****", got)
	}
}

func TestManagerCreateAndAuthenticate(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	rec, rawToken, err := m.Create(ctx, "ci-reload")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.TokenHash != "" {
		t.Error("Create must redact the hash")
	}
	if !IsValidTokenIDFormat(rec.ID) {
		t.Errorf("Unexpected token id: %s", rec.ID)
	}
	if !IsValidTokenFormat(rawToken) {
		t.Errorf("Unexpected raw token format: %s", MaskToken(rawToken))
	}

	result := m.Authenticate(ctx, rawToken)
	if !result.Authenticated {
		t.Fatalf("Expected authentication to succeed, got %s: %s", result.ErrorCode, result.ErrorMessage)
	}
	if result.TokenID != rec.ID || result.TokenName != "ci-reload" {
		t.Errorf("Unexpected identity: %s %s", result.TokenID, result.TokenName)
	}
}

func TestManagerAuthenticateErrors(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	// Fresh installation: nothing issued yet, all attempts refused.
	result := m.Authenticate(ctx, "")
	if result.Authenticated || result.ErrorCode != ErrCodeNoTokens {
		t.Errorf("Expected %s on fresh install, got %+v", ErrCodeNoTokens, result)
	}

	if _, _, err := m.Create(ctx, "ci-reload"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{"missing token", "", ErrCodeMissingToken},
		{"malformed token", "not-a-token", ErrCodeInvalidToken},
		{"unknown token", TokenPrefix + strings.Repeat("0", 64), ErrCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.Authenticate(ctx, tt.token)
			if result.Authenticated {
				t.Fatal("Expected authentication to fail")
			}
			if result.ErrorCode != tt.wantCode {
				t.Errorf("ErrorCode = %s, want %s", result.ErrorCode, tt.wantCode)
			}
		})
	}
}

func TestManagerRevoke(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	rec, rawToken, err := m.Create(ctx, "ci-reload")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	// A revoked token is indistinguishable from an unknown one, and with no
	// remaining active tokens authentication shuts off entirely.
	result := m.Authenticate(ctx, rawToken)
	if result.Authenticated {
		t.Fatal("Expected revoked token to be rejected")
	}
	if result.ErrorCode != ErrCodeNoTokens {
		t.Errorf("ErrorCode = %s, want %s", result.ErrorCode, ErrCodeNoTokens)
	}

	if err := m.Revoke(ctx, "garbage-id"); !errors.Is(err, storage.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound for malformed id, got %v", err)
	}
}

func TestManagerRevokedTokenWithOthersActive(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	revoked, revokedToken, err := m.Create(ctx, "old")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, _, err := m.Create(ctx, "current"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Revoke(ctx, revoked.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	result := m.Authenticate(ctx, revokedToken)
	if result.Authenticated {
		t.Fatal("Expected revoked token to be rejected")
	}
	if result.ErrorCode != ErrCodeInvalidToken {
		t.Errorf("ErrorCode = %s, want %s", result.ErrorCode, ErrCodeInvalidToken)
	}
}

func TestManagerList(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	rec, _, err := m.Create(ctx, "ci-reload")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tokens, err := m.List(ctx, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].TokenHash != "" {
		t.Error("List must redact hashes")
	}

	if err := m.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	tokens, err = m.List(ctx, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("Expected no active tokens, got %d", len(tokens))
	}
}

func TestManagerDelete(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	rec, _, err := m.Create(ctx, "ci-reload")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, rec.ID); !errors.Is(err, storage.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound, got %v", err)
	}
}
