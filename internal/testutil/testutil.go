// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"strings"
	"testing"

	"anoa.com/rickmortyapi/internal/bootstrap"
	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the production schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())

	db, err := database.Open(database.Options{
		SQLitePath:   "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     gormlogger.Silent,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// CreateUser stores an active user with a cheap bcrypt hash of password.
func CreateUser(t *testing.T, db *gorm.DB, email, password string, admin bool) *entity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &entity.User{Email: email, PasswordHash: string(hash), IsActive: true, IsAdmin: admin}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func CreateLocation(t *testing.T, db *gorm.DB, name string) *entity.Location {
	t.Helper()

	loc := &entity.Location{Name: name}
	if err := db.Create(loc).Error; err != nil {
		t.Fatalf("create location %s: %v", name, err)
	}
	return loc
}

func CreateEpisode(t *testing.T, db *gorm.DB, name, code string) *entity.Episode {
	t.Helper()

	ep := &entity.Episode{Name: name, EpisodeCode: code}
	if err := db.Create(ep).Error; err != nil {
		t.Fatalf("create episode %s: %v", name, err)
	}
	return ep
}

func CreateCharacter(t *testing.T, db *gorm.DB, name string) *entity.Character {
	t.Helper()

	c := &entity.Character{Name: name, Status: "Alive", Species: "Human", Gender: "Male"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create character %s: %v", name, err)
	}
	return c
}

func Ptr[T any](v T) *T {
	return &v
}
