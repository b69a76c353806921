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
	"github.com/markethive/accounts-backend/pkg/security"
)

// RegisterRequest contains the payload for the public signup endpoint.
type RegisterRequest struct {
	FirstName string         `json:"first_name" validate:"required"`
	LastName  string         `json:"last_name" validate:"required"`
	Email     string         `json:"email" validate:"required,email"`
	Password  string         `json:"password" validate:"required,min=8"`
	Phone     *string        `json:"phone,omitempty"`
	Role      enums.UserRole `json:"role,omitempty"`
}

// RegisterService handles public signup.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterUserRepository is the user persistence surface signup needs,
// bound to the transaction the factory receives.
type RegisterUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type otpIssuer interface {
	Issue(ctx context.Context, user *models.User) error
}

// RegisterServiceParams packages the dependencies for the signup flow.
type RegisterServiceParams struct {
	TxRunner        TxRunner
	UserRepoFactory func(tx *gorm.DB) RegisterUserRepository
	OTPService      otpIssuer
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          TxRunner
	userRepoFor func(tx *gorm.DB) RegisterUserRepository
	otp         otpIssuer
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.UserRepoFactory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo factory required")
	}
	if params.OTPService == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "otp service required")
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepoFor: params.UserRepoFactory,
		otp:         params.OTPService,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the account inactive and issues the activation code. Only
// plain user signups pass; admin accounts come from the admin endpoint.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := req.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	if role != enums.UserRoleUser {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot self-register")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
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

		inactive := false
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        req.Phone,
			Role:         enums.UserRoleUser,
			Provider:     enums.SignupProviderEmail,
			IsActive:     &inactive,
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

	// issued after the commit so a mail hiccup cannot roll back the account
	if err := s.otp.Issue(ctx, created); err != nil {
		return nil, err
	}
	return users.FromModel(created), nil
}
