// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"testing"

	"chirp/internal/database"
	"chirp/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a migrated in-memory database that lives for the test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given username; an empty username
// leaves the account without one.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    "u" + username + "@example.com",
		Password: "x",
		Name:     username,
	}
	if username != "" {
		name := username
		u.Username = &name
	} else {
		u.Email = "anon-" + randomSuffix() + "@example.com"
		u.Name = "Anonymous"
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

// CreateTweet inserts a tweet by author with the given text.
func CreateTweet(t *testing.T, db *gorm.DB, authorID, content string) *models.Tweet {
	t.Helper()
	tw := &models.Tweet{UserID: authorID, Content: content}
	if err := db.Create(tw).Error; err != nil {
		t.Fatalf("create tweet: %v", err)
	}
	return tw
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}
