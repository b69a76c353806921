package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "markethive",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID:  userID,
		Role:    enums.UserRoleAdmin,
		IsAdmin: true,
		JTI:     "session-1",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}
	if !claims.IsAdmin {
		t.Fatal("expected is_admin claim")
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti session-1, got %s", claims.ID)
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRole("vendor"),
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseAllowExpired(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().UTC().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
		JTI:    "expired-session",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if claims.ID != "expired-session" {
		t.Fatalf("expected jti from expired token, got %s", claims.ID)
	}
}
