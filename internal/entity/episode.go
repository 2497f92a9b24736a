package entity

import "time"

type Episode struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:120;not null" json:"name"`
	AirDate     *string     `gorm:"size:50" json:"air_date"`
	EpisodeCode string      `gorm:"size:50;not null" json:"episode_code"`
	Characters  []Character `gorm:"many2many:character_episodes;" json:"characters,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
