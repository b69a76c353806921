package controllers

import (
	"net/http"

	"github.com/markethive/accounts-backend/api/responses"
	"github.com/markethive/accounts-backend/api/validators"
	"github.com/markethive/accounts-backend/internal/otp"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
)

type otpVerifyRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type otpReissueRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPVerify activates the account behind a valid activation code.
func OTPVerify(svc otp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "otp service unavailable"))
			return
		}

		var body otpVerifyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Verify(r.Context(), body.OTP); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "verified"})
	}
}

// OTPNew reissues an activation code for an unverified account.
func OTPNew(svc otp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "otp service unavailable"))
			return
		}

		var body otpReissueRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reissue(r.Context(), body.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
