package dto

type CreateCharacterRequest struct {
	Name       string  `json:"name" binding:"required,max=120"`
	Status     string  `json:"status" binding:"required,max=50"`
	Species    string  `json:"species" binding:"required,max=50"`
	Gender     string  `json:"gender" binding:"required,max=50"`
	OriginID   *uint   `json:"origin_id" binding:"omitempty,min=1"`
	LocationID *uint   `json:"location_id" binding:"omitempty,min=1"`
	Image      *string `json:"image" binding:"omitempty,max=250"`
	EpisodeIDs []uint  `json:"episode_ids" binding:"omitempty,dive,min=1"`
}

// UpdateCharacterRequest leaves fields that are absent or null untouched.
// A non-nil EpisodeIDs replaces the whole episode list. ClearOrigin and
// ClearLocation unset the reference and cannot be combined with a new id.
type UpdateCharacterRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=120"`
	Status     *string `json:"status" binding:"omitempty,min=1,max=50"`
	Species    *string `json:"species" binding:"omitempty,min=1,max=50"`
	Gender     *string `json:"gender" binding:"omitempty,min=1,max=50"`
	OriginID   *uint   `json:"origin_id" binding:"omitempty,min=1"`
	LocationID *uint   `json:"location_id" binding:"omitempty,min=1"`
	Image      *string `json:"image" binding:"omitempty,max=250"`
	EpisodeIDs *[]uint `json:"episode_ids" binding:"omitempty,dive,min=1"`

	ClearOrigin   bool `json:"clear_origin"`
	ClearLocation bool `json:"clear_location"`
}

type CharacterFilter struct {
	Name    string `form:"name"`
	Status  string `form:"status"`
	Species string `form:"species"`
	Gender  string `form:"gender"`
}
