package entity

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:256;not null" json:"-"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	IsAdmin      bool       `gorm:"not null" json:"is_admin"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Favorites    []Favorite `gorm:"constraint:OnDelete:CASCADE" json:"favorites,omitempty"`
}
