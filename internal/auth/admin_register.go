package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/internal/users"
	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db/models"
	"github.com/markethive/accounts-backend/pkg/enums"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
	"github.com/markethive/accounts-backend/pkg/mail"
	"github.com/markethive/accounts-backend/pkg/security"
)

const tempPasswordLength = 12

// AdminCreateRequest contains the payload for onboarding a staff account.
// When the password is omitted a temporary one is generated and emailed.
type AdminCreateRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// AdminCreateService creates admin users on behalf of an administrator.
type AdminCreateService interface {
	Create(ctx context.Context, req AdminCreateRequest) (*users.UserDTO, error)
}

// AdminCreateServiceParams names the dependencies for the admin onboarding flow.
type AdminCreateServiceParams struct {
	TxRunner        TxRunner
	UserRepoFactory func(tx *gorm.DB) RegisterUserRepository
	Mailer          mail.Sender
	Activity        activityRecorder
	Logger          *logger.Logger
	PasswordConfig  config.PasswordConfig
	Site            config.SiteConfig
}

type adminCreateService struct {
	tx          TxRunner
	userRepoFor func(tx *gorm.DB) RegisterUserRepository
	mailer      mail.Sender
	activity    activityRecorder
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
	site        config.SiteConfig
}

// NewAdminCreateService builds an admin onboarding service.
func NewAdminCreateService(params AdminCreateServiceParams) (AdminCreateService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.UserRepoFactory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo factory required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	if params.Activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activity recorder required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &adminCreateService{
		tx:          params.TxRunner,
		userRepoFor: params.UserRepoFactory,
		mailer:      params.Mailer,
		activity:    params.Activity,
		logg:        params.Logger,
		passwordCfg: params.PasswordConfig,
		site:        params.Site,
	}, nil
}

// Create onboards an admin account, active immediately. The plaintext
// credentials leave the process only inside the onboarding email.
func (s *adminCreateService) Create(ctx context.Context, req AdminCreateRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	password := req.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
	}

	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepoFor(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        req.Phone,
			Role:         enums.UserRoleAdmin,
			Provider:     enums.SignupProviderEmail,
			IsStaff:      true,
			IsAdmin:      true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := mail.AdminCredentialsMessage(s.site, created.FirstName, created.Email, password)
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "subject", msg.Subject), "sending credentials email failed: "+err.Error())
	}

	s.activity.Record(ctx, &created.ID, "admin account created")
	return users.FromModel(created), nil
}
