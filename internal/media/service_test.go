package media

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
)

var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00")
)

type stubUsers struct {
	user     *models.User
	imageURL string
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUsers) UpdateImageURL(_ context.Context, _ uuid.UUID, url string) error {
	s.imageURL = url
	return nil
}

type stubUploader struct {
	key         string
	contentType string
	body        []byte
}

func (s *stubUploader) Upload(_ context.Context, key, contentType string, body []byte) (string, error) {
	s.key = key
	s.contentType = contentType
	s.body = body
	return "https://cdn.example.com/" + key, nil
}

func (s *stubUploader) Delete(_ context.Context, _ string) error { return nil }

type stubActivity struct {
	actions []string
}

func (s *stubActivity) Record(_ context.Context, _ *uuid.UUID, action string) {
	s.actions = append(s.actions, action)
}

type mediaFixture struct {
	svc      Service
	users    *stubUsers
	uploader *stubUploader
	activity *stubActivity
	userID   uuid.UUID
}

func newMediaFixture(t *testing.T) *mediaFixture {
	t.Helper()

	id := uuid.New()
	users := &stubUsers{user: &models.User{ID: id, IsActive: true}}
	uploader := &stubUploader{}
	activity := &stubActivity{}
	svc, err := NewService(ServiceParams{
		Users:    users,
		Storage:  uploader,
		Activity: activity,
		Media:    config.MediaConfig{MaxUploadMB: 1},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &mediaFixture{svc: svc, users: users, uploader: uploader, activity: activity, userID: id}
}

func TestUploadProfileImagePNG(t *testing.T) {
	f := newMediaFixture(t)

	encoded := base64.StdEncoding.EncodeToString(pngBytes)
	res, err := f.svc.UploadProfileImage(context.Background(), f.userID, encoded)
	if err != nil {
		t.Fatalf("UploadProfileImage: %v", err)
	}
	if !strings.HasPrefix(f.uploader.key, "profile_photos/") || !strings.HasSuffix(f.uploader.key, ".png") {
		t.Fatalf("unexpected object key %q", f.uploader.key)
	}
	if f.uploader.contentType != "image/png" {
		t.Fatalf("unexpected content type %q", f.uploader.contentType)
	}
	if f.users.imageURL != res.ImageURL {
		t.Fatal("user image url should match the upload result")
	}
	if len(f.activity.actions) != 1 {
		t.Fatal("expected activity entry")
	}
}

func TestUploadProfileImageDataURI(t *testing.T) {
	f := newMediaFixture(t)

	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
	_, err := f.svc.UploadProfileImage(context.Background(), f.userID, encoded)
	if err != nil {
		t.Fatalf("UploadProfileImage: %v", err)
	}
	if !strings.HasSuffix(f.uploader.key, ".jpg") {
		t.Fatalf("unexpected object key %q", f.uploader.key)
	}
}

func TestUploadProfileImageRejectsOtherFormats(t *testing.T) {
	f := newMediaFixture(t)

	encoded := base64.StdEncoding.EncodeToString(gifBytes)
	_, err := f.svc.UploadProfileImage(context.Background(), f.userID, encoded)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for gif payload, got %v", err)
	}
	if f.uploader.key != "" {
		t.Fatal("nothing should be uploaded")
	}
}

func TestUploadProfileImageRejectsOversizedPayload(t *testing.T) {
	f := newMediaFixture(t)

	big := make([]byte, (1<<20)+1)
	copy(big, pngBytes)
	_, err := f.svc.UploadProfileImage(context.Background(), f.userID, base64.StdEncoding.EncodeToString(big))
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for oversized payload, got %v", err)
	}
}

func TestUploadProfileImageRejectsBadBase64(t *testing.T) {
	f := newMediaFixture(t)

	_, err := f.svc.UploadProfileImage(context.Background(), f.userID, "not-base64!!!")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestUploadProfileImageUnknownUser(t *testing.T) {
	f := newMediaFixture(t)

	_, err := f.svc.UploadProfileImage(context.Background(), uuid.New(), base64.StdEncoding.EncodeToString(pngBytes))
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
