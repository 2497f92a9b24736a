package entity

import "time"

// Character points at two independent locations: where it comes from and
// where it was last seen. Either may be unset.
type Character struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:120;not null" json:"name"`
	Status     string    `gorm:"size:50;not null" json:"status"`
	Species    string    `gorm:"size:50;not null" json:"species"`
	Gender     string    `gorm:"size:50;not null" json:"gender"`
	OriginID   *uint     `gorm:"index" json:"origin_id"`
	Origin     *Location `gorm:"foreignKey:OriginID;constraint:OnDelete:SET NULL" json:"origin,omitempty"`
	LocationID *uint     `gorm:"index" json:"location_id"`
	Location   *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location,omitempty"`
	Image      *string   `gorm:"size:250" json:"image"`
	Episodes   []Episode `gorm:"many2many:character_episodes;" json:"episodes,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
