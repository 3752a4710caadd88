// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"stackit/internal/database"
	"stackit/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database. The pool is pinned to
// one connection so every query sees the same memory database; never issue
// queries on the parent handle from inside a transaction.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// CreateUser inserts a user with a cheap bcrypt hash of "Password123!".
func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateQuestion inserts an active question owned by userID.
func CreateQuestion(t testing.TB, db *gorm.DB, userID uint, title string) *models.Question {
	t.Helper()
	q := &models.Question{UserID: userID, Title: title, Body: "body of " + title, Status: models.StatusActive}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

// CreateAnswer inserts an active answer.
func CreateAnswer(t testing.TB, db *gorm.DB, questionID, userID uint, accepted bool) *models.Answer {
	t.Helper()
	a := &models.Answer{QuestionID: questionID, UserID: userID, Body: "an answer", Status: models.StatusActive}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create answer: %v", err)
	}
	// default:false on the column means a zero value is skipped on insert
	if accepted {
		if err := db.Model(a).Update("is_accepted", true).Error; err != nil {
			t.Fatalf("accept answer: %v", err)
		}
		a.IsAccepted = true
	}
	return a
}
