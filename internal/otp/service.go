package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
	"github.com/markethive/accounts-backend/pkg/mail"
	"github.com/markethive/accounts-backend/pkg/metrics"
	"github.com/markethive/accounts-backend/pkg/security"
)

// Service issues and verifies account activation codes.
type Service interface {
	Issue(ctx context.Context, user *models.User) error
	Verify(ctx context.Context, code string) error
	Reissue(ctx context.Context, email string) error
}

type repository interface {
	Create(ctx context.Context, userID uuid.UUID, code string, expiry time.Time) (*models.ActivationOtp, error)
	FindLatestByCode(ctx context.Context, code string) (*models.ActivationOtp, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindInactiveByEmail(ctx context.Context, email string) (*models.User, error)
	Activate(ctx context.Context, id uuid.UUID) error
}

type activityRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action string)
}

// ServiceParams bundles the dependencies required to build an OTP service.
type ServiceParams struct {
	Repo     repository
	Users    userRepository
	Mailer   mail.Sender
	Activity activityRecorder
	Logger   *logger.Logger
	Metrics  *metrics.AuthMetrics
	Site     config.SiteConfig
	OTP      config.OTPConfig
}

type service struct {
	repo     repository
	users    userRepository
	mailer   mail.Sender
	activity activityRecorder
	logg     *logger.Logger
	metrics  *metrics.AuthMetrics
	site     config.SiteConfig
	cfg      config.OTPConfig
}

// NewService constructs an OTP service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("otp repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity recorder is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		mailer:   params.Mailer,
		activity: params.Activity,
		logg:     params.Logger,
		metrics:  params.Metrics,
		site:     params.Site,
		cfg:      params.OTP,
	}, nil
}

// Issue creates a fresh code for the user and emails it. Outstanding codes
// stay redeemable until one of them verifies.
func (s *service) Issue(ctx context.Context, user *models.User) error {
	code, err := s.issueCode(ctx, user)
	if err != nil {
		return err
	}
	s.sendMail(ctx, mail.ActivationMessage(s.site, user.FirstName, user.Email, code, s.cfg.TTL()))
	return nil
}

// Verify redeems a code: the owner becomes active and every code they hold
// is burned. Misses never delete anything; a colliding code could belong to
// someone else's live session.
func (s *service) Verify(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "otp is required")
	}

	row, err := s.repo.FindLatestByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncActivation("invalid")
			return pkgerrors.New(pkgerrors.CodeNotFound, "Invalid OTP")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup otp")
	}

	if !row.IsValid(time.Now().UTC()) {
		s.metrics.IncActivation("expired")
		return pkgerrors.New(pkgerrors.CodeStateConflict, "OTP expired")
	}

	user, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup otp owner")
	}
	if user.IsActive {
		s.metrics.IncActivation("already_verified")
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account already verified")
	}

	if err := s.users.Activate(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate user")
	}
	if err := s.repo.DeleteAllForUser(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "burn otps")
	}

	s.metrics.IncActivation("success")
	s.activity.Record(ctx, &user.ID, "account verified")
	s.sendMail(ctx, mail.ConfirmationMessage(s.site, user.FirstName, user.Email))
	return nil
}

// Reissue sends a fresh code to an account that has not verified yet.
func (s *service) Reissue(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindInactiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"please confirm that the email is correct and has not been verified")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	code, err := s.issueCode(ctx, user)
	if err != nil {
		return err
	}
	s.sendMail(ctx, mail.NewOTPMessage(s.site, user.FirstName, user.Email, code, s.cfg.TTL()))
	return nil
}

func (s *service) issueCode(ctx context.Context, user *models.User) (string, error) {
	if user == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "user is required")
	}

	code, err := security.GenerateOTP(s.cfg.Digits)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	expiry := time.Now().UTC().Add(s.cfg.TTL())
	if _, err := s.repo.Create(ctx, user.ID, code, expiry); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store otp")
	}

	s.metrics.IncOTPIssued()
	return code, nil
}

// sendMail is fire-and-forget: delivery failures are logged, never returned,
// and never roll back the state change that triggered the email.
func (s *service) sendMail(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.metrics.IncMailFailure()
		s.logg.Warn(s.logg.WithField(ctx, "subject", msg.Subject), "sending email failed: "+err.Error())
	}
}
