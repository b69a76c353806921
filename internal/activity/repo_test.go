package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/db/models"
	"github.com/markethive/accounts-backend/pkg/pagination"
)

func setupActivityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS activity_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT,
  action TEXT NOT NULL,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, action string, createdAt time.Time, deleted bool) *models.ActivityLog {
	t.Helper()

	userID := uuid.New()
	entry := &models.ActivityLog{
		UserID:    &userID,
		Action:    action,
		IsDeleted: deleted,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryCreateAndList(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	entry, err := repo.Create(context.Background(), &userID, "logged in")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)

	rows, err := repo.List(context.Background(), pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "logged in", rows[0].Action)
}

func TestRepositoryListHidesSoftDeleted(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedEntry(t, db, "visible", now, false)
	seedEntry(t, db, "hidden", now.Add(-time.Minute), true)

	rows, err := repo.List(context.Background(), pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "visible", rows[0].Action)
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedEntry(t, db, "oldest", now.Add(-2*time.Hour), false)
	seedEntry(t, db, "middle", now.Add(-time.Hour), false)
	seedEntry(t, db, "newest", now, false)

	rows, err := repo.List(context.Background(), pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "newest", rows[0].Action)

	cursor := pagination.EncodeSeqCursor(pagination.SeqCursor{CreatedAt: rows[1].CreatedAt, ID: rows[1].ID})
	second, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "oldest", second[0].Action)
}

func TestListReturnsEveryRowWhenTimestampsCollide(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, testLogger())
	require.NoError(t, err)

	ts := time.Now().UTC().Truncate(time.Second)
	seedEntry(t, db, "first", ts, false)
	seedEntry(t, db, "second", ts, false)
	seedEntry(t, db, "third", ts, false)

	seen := map[string]bool{}
	cursor := ""
	for i := 0; i < 3; i++ {
		page, err := svc.List(context.Background(), pagination.Params{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, entry := range page.Entries {
			seen[entry.Action] = true
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 3)
}

func TestRepositorySoftDelete(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)

	entry := seedEntry(t, db, "to hide", time.Now().UTC(), false)
	require.NoError(t, repo.SoftDelete(context.Background(), entry.ID))

	rows, err := repo.List(context.Background(), pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 9999), gorm.ErrRecordNotFound)
}

func TestRepositoryPurgeSoftDeleted(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedEntry(t, db, "old hidden", now.Add(-48*time.Hour), true)
	seedEntry(t, db, "fresh hidden", now, true)
	keep := seedEntry(t, db, "old visible", now.Add(-48*time.Hour), false)

	removed, err := repo.PurgeSoftDeleted(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var kept models.ActivityLog
	require.NoError(t, db.First(&kept, "id = ?", keep.ID).Error)
	assert.False(t, kept.IsDeleted)
}
