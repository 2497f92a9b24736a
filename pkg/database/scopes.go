package database

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsFold matches rows whose column contains value, ignoring case.
// It works the same on PostgreSQL and SQLite. An empty value matches everything.
func ContainsFold(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
	}
}

// EqualFold matches rows whose column equals value, ignoring case.
func EqualFold(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where("LOWER("+column+") = ?", strings.ToLower(value))
	}
}
