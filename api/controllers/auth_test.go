package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markethive/accounts-backend/internal/auth"
	"github.com/markethive/accounts-backend/internal/users"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
)

type stubAuthService struct {
	loginResp  *auth.LoginResponse
	loginErr   error
	logoutErr  error
	refreshed  *auth.RefreshResponse
	refreshErr error

	lastLogin   auth.LoginRequest
	logoutToken string
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastLogin = req
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Refresh(_ context.Context, _ string, _ auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return s.refreshed, s.refreshErr
}

func (s *stubAuthService) Logout(_ context.Context, token string, _ auth.LogoutRequest) error {
	s.logoutToken = token
	return s.logoutErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{
		loginResp: &auth.LoginResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			User:         &users.UserDTO{Email: "ada@example.com"},
		},
	}
	handler := AuthLogin(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"Secret123!"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.AccessToken != "access" || payload.Data.RefreshToken != "refresh" {
		t.Fatalf("unexpected payload %+v", payload.Data)
	}
	if svc.lastLogin.Email != "ada@example.com" {
		t.Fatalf("request not forwarded, got %+v", svc.lastLogin)
	}
}

func TestAuthLoginValidationFailure(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("expected public message, got %s", rec.Body.String())
	}
}

func TestAuthLogoutResetsContent(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout",
		strings.NewReader(`{"refresh_token":"refresh"}`))
	req.Header.Set("Authorization", "Bearer access-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusResetContent {
		t.Fatalf("expected 205, got %d", rec.Code)
	}
	if svc.logoutToken != "access-token" {
		t.Fatalf("expected bearer token forwarded, got %q", svc.logoutToken)
	}
}

func TestAuthLogoutMissingCredentials(t *testing.T) {
	handler := AuthLogout(&stubAuthService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout",
		strings.NewReader(`{"refresh_token":"refresh"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
