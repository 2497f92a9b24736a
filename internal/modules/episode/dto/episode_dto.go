package dto

type CreateEpisodeRequest struct {
	Name         string  `json:"name" binding:"required,max=120"`
	AirDate      *string `json:"air_date" binding:"omitempty,max=50"`
	EpisodeCode  string  `json:"episode_code" binding:"required,max=50"`
	CharacterIDs []uint  `json:"character_ids" binding:"omitempty,dive,min=1"`
}

// UpdateEpisodeRequest leaves fields that are absent or null untouched.
// A non-nil CharacterIDs replaces the whole cast.
type UpdateEpisodeRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=120"`
	AirDate      *string `json:"air_date" binding:"omitempty,max=50"`
	EpisodeCode  *string `json:"episode_code" binding:"omitempty,min=1,max=50"`
	CharacterIDs *[]uint `json:"character_ids" binding:"omitempty,dive,min=1"`
}

type EpisodeFilter struct {
	Name        string `form:"name"`
	EpisodeCode string `form:"episode"`
}
