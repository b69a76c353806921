package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/internal/users"
	pkgAuth "github.com/markethive/accounts-backend/pkg/auth"
	"github.com/markethive/accounts-backend/pkg/auth/session"
	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/metrics"
	"github.com/markethive/accounts-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the session lifecycle behavior needed by the controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessToken string, req LogoutRequest) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	RevokeIfMatch(ctx context.Context, accessID, provided string) error
}

type activityRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action string)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Activity       activityRecorder
	Metrics        *metrics.AuthMetrics
	JWTConfig      config.JWTConfig
}

type service struct {
	users    userRepository
	session  sessionManager
	activity activityRecorder
	metrics  *metrics.AuthMetrics
	jwtCfg   config.JWTConfig
}

// NewService constructs a session service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity recorder is required")
	}
	return &service{
		users:    params.UserRepo,
		session:  params.SessionManager,
		activity: params.Activity,
		metrics:  params.Metrics,
		jwtCfg:   params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		// Infrastructure failures must not count as rejected credentials.
		if pkgerrors.CodeOf(err) == pkgerrors.CodeUnauthorized {
			s.metrics.IncLogin("invalid_credentials")
		} else {
			s.metrics.IncLogin("error")
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Role:    user.Role,
		IsAdmin: user.IsAdmin,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	s.metrics.IncLogin("success")
	s.metrics.IncSessionEvent("created")
	s.activity.Record(ctx, &user.ID, "logged in")

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

// Refresh rotates the session: the presented refresh token is spent, a new
// jti and refresh token take its place, and the prior pair stops working.
// The access token may already be expired; only its signature must hold.
func (s *service) Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive || user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	now := time.Now().UTC()
	newAccess, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Role:    user.Role,
		IsAdmin: user.IsAdmin,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.metrics.IncSessionEvent("rotated")
	return &RefreshResponse{
		AccessToken:  newAccess,
		RefreshToken: newRefresh,
	}, nil
}

// Logout revokes the session named by the access token's jti after the
// refresh token proves ownership. Works on expired access tokens too.
func (s *service) Logout(ctx context.Context, accessToken string, req LogoutRequest) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	if err := s.session.RevokeIfMatch(ctx, claims.ID, req.RefreshToken); err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}

	s.metrics.IncSessionEvent("revoked")
	s.activity.Record(ctx, &claims.UserID, "logged out")
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive || user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
