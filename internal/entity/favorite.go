package entity

import "time"

// Favorite links a user to exactly one catalog entry kind per row, though
// the schema allows any combination of the three references.
type Favorite struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"-"`
	CharacterID *uint      `gorm:"index" json:"character_id"`
	Character   *Character `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"character,omitempty"`
	EpisodeID   *uint      `gorm:"index" json:"episode_id"`
	Episode     *Episode   `gorm:"foreignKey:EpisodeID;constraint:OnDelete:CASCADE" json:"episode,omitempty"`
	LocationID  *uint      `gorm:"index" json:"location_id"`
	Location    *Location  `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"location,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// HasReference reports whether at least one catalog entry is referenced.
func (f *Favorite) HasReference() bool {
	return f.CharacterID != nil || f.EpisodeID != nil || f.LocationID != nil
}
