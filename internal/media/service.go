package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/storage/s3"
)

const keyPrefix = "profile_photos"

// extByMime maps the accepted profile image types to their object key
// extension. Anything outside this map is rejected.
var extByMime = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error
}

type activityRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action string)
}

// UploadResult carries the stored location of a profile image.
type UploadResult struct {
	ImageURL string `json:"image_url"`
}

// Service stores profile images for user accounts.
type Service interface {
	UploadProfileImage(ctx context.Context, userID uuid.UUID, encoded string) (*UploadResult, error)
}

// ServiceParams packages the dependencies of the media service.
type ServiceParams struct {
	Users    userRepository
	Storage  s3.Uploader
	Activity activityRecorder
	Media    config.MediaConfig
}

type service struct {
	users    userRepository
	storage  s3.Uploader
	activity activityRecorder
	maxBytes int64
}

// NewService builds a media service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "storage client required")
	}
	if params.Activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activity recorder required")
	}
	maxMB := params.Media.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 5
	}
	return &service{
		users:    params.Users,
		storage:  params.Storage,
		activity: params.Activity,
		maxBytes: int64(maxMB) << 20,
	}, nil
}

// UploadProfileImage decodes the payload, verifies it really is a PNG or
// JPEG, stores it, and points the account at the new URL.
func (s *service) UploadProfileImage(ctx context.Context, userID uuid.UUID, encoded string) (*UploadResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	if user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	raw, err := decodePayload(encoded)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("image exceeds the %d MB limit", s.maxBytes>>20))
	}

	// sniff the real content type; the data URI header is untrusted
	detected := mimetype.Detect(raw)
	ext, ok := extByMime[detected.String()]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image must be a PNG or JPEG")
	}

	key := fmt.Sprintf("%s/%s.%s", keyPrefix, uuid.New(), ext)
	url, err := s.storage.Upload(ctx, key, detected.String(), raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}

	if err := s.users.UpdateImageURL(ctx, user.ID, url); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update image url")
	}

	s.activity.Record(ctx, &user.ID, "profile image updated")
	return &UploadResult{ImageURL: url}, nil
}

// decodePayload accepts a bare base64 string or a data URI
// ("data:image/png;base64,....").
func decodePayload(encoded string) ([]byte, error) {
	value := strings.TrimSpace(encoded)
	if value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image payload is required")
	}
	if strings.HasPrefix(value, "data:") {
		idx := strings.Index(value, ",")
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed data URI")
		}
		value = value[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image payload is not valid base64")
	}
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}
	return raw, nil
}
