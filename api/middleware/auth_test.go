package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/markethive/accounts-backend/pkg/auth"
	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/enums"
	"github.com/markethive/accounts-backend/pkg/logger"
)

type stubSessionChecker struct {
	has bool
	err error
}

func (s *stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return s.has, s.err
}

func authTestJWT() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "markethive",
		ExpirationMinutes: 30,
	}
}

type capturedIdentity struct {
	userID  string
	role    string
	isAdmin bool
	reached bool
}

func runAuth(t *testing.T, token string, checker *stubSessionChecker) (*httptest.ResponseRecorder, *capturedIdentity) {
	t.Helper()

	captured := &capturedIdentity{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.reached = true
		captured.userID = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.isAdmin = IsAdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(authTestJWT(), checker, logger.New(logger.Options{ServiceName: "test"}))(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func mintToken(t *testing.T, payload pkgAuth.AccessTokenPayload) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(authTestJWT(), time.Now().UTC(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsIdentityContext(t *testing.T) {
	userID := uuid.New()
	token := mintToken(t, pkgAuth.AccessTokenPayload{
		UserID:  userID,
		Role:    enums.UserRoleAdmin,
		IsAdmin: true,
		JTI:     uuid.NewString(),
	})

	rec, captured := runAuth(t, token, &stubSessionChecker{has: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.reached {
		t.Fatal("next handler not reached")
	}
	if captured.userID != userID.String() || captured.role != "admin" || !captured.isAdmin {
		t.Fatalf("context not seeded: %+v", captured)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	rec, captured := runAuth(t, "", &stubSessionChecker{has: true})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if captured.reached {
		t.Fatal("next handler should not run")
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token := mintToken(t, pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
		JTI:    uuid.NewString(),
	})

	rec, captured := runAuth(t, token, &stubSessionChecker{has: false})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for dead session, got %d", rec.Code)
	}
	if captured.reached {
		t.Fatal("next handler should not run")
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	rec, _ := runAuth(t, "not-a-jwt", &stubSessionChecker{has: true})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
