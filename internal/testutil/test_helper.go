package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a migrated sqlite database in the test's temp dir. It is
// closed when the test ends.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "reading.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if failed := repository.Migrate(context.Background(), db, zap.NewNop()); failed != 0 {
		t.Fatalf("migrate: %d steps failed", failed)
	}
	t.Cleanup(func() { _ = repository.CloseDB(db) })
	return db
}

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateUser inserts a user with a password hash already set.
func (h *TestHelper) CreateUser(db *gorm.DB, username string) *models.User {
	h.t.Helper()
	hash := "hashed_password_123"
	user := &models.User{Username: username, PasswordHash: &hash}
	if err := db.Create(user).Error; err != nil {
		h.t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateGroup inserts a group owned by owner, with the owner as first member.
func (h *TestHelper) CreateGroup(db *gorm.DB, name, code string, owner *models.User) *models.Group {
	h.t.Helper()
	group := &models.Group{Name: name, InviteCode: code}
	if err := repository.NewGroupRepository(db).CreateWithOwner(context.Background(), group, owner.ID); err != nil {
		h.t.Fatalf("create group %s: %v", name, err)
	}
	return group
}

// AddMember joins user to group.
func (h *TestHelper) AddMember(db *gorm.DB, group *models.Group, user *models.User) {
	h.t.Helper()
	if err := repository.NewGroupRepository(db).AddMember(context.Background(), group.ID, user.ID); err != nil {
		h.t.Fatalf("add member %s: %v", user.Username, err)
	}
}

// Count returns the number of rows of model matching the condition.
func (h *TestHelper) Count(db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	h.t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		h.t.Fatalf("count: %v", err)
	}
	return n
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
}
