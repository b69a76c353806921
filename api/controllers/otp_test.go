package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
)

type stubOTPService struct {
	verifyErr   error
	reissueErr  error
	lastCode    string
	lastEmail   string
	issueCalled int
}

func (s *stubOTPService) Issue(_ context.Context, _ *models.User) error {
	s.issueCalled++
	return nil
}

func (s *stubOTPService) Verify(_ context.Context, code string) error {
	s.lastCode = code
	return s.verifyErr
}

func (s *stubOTPService) Reissue(_ context.Context, email string) error {
	s.lastEmail = email
	return s.reissueErr
}

func TestOTPVerifySuccess(t *testing.T) {
	svc := &stubOTPService{}
	handler := OTPVerify(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify",
		strings.NewReader(`{"otp":"123456"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCode != "123456" {
		t.Fatalf("code not forwarded, got %q", svc.lastCode)
	}
}

func TestOTPVerifyRejectsShortCode(t *testing.T) {
	svc := &stubOTPService{}
	handler := OTPVerify(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify",
		strings.NewReader(`{"otp":"123"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.lastCode != "" {
		t.Fatal("service should not be reached on validation failure")
	}
}

func TestOTPVerifyExpired(t *testing.T) {
	svc := &stubOTPService{verifyErr: pkgerrors.New(pkgerrors.CodeStateConflict, "OTP expired")}
	handler := OTPVerify(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify",
		strings.NewReader(`{"otp":"123456"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OTP expired") {
		t.Fatalf("expected public message, got %s", rec.Body.String())
	}
}

func TestOTPNewForwardsEmail(t *testing.T) {
	svc := &stubOTPService{}
	handler := OTPNew(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/new",
		strings.NewReader(`{"email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastEmail != "ada@example.com" {
		t.Fatalf("email not forwarded, got %q", svc.lastEmail)
	}
}
