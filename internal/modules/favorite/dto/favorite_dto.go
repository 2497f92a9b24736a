package dto

import commonDto "anoa.com/rickmortyapi/pkg/dto"

// CreateFavoriteRequest names at least one catalog entry to favorite.
type CreateFavoriteRequest struct {
	CharacterID *uint `json:"character_id" binding:"omitempty,min=1"`
	EpisodeID   *uint `json:"episode_id" binding:"omitempty,min=1"`
	LocationID  *uint `json:"location_id" binding:"omitempty,min=1"`
}

// CreateFavoriteWithUserRequest carries the owner in the body.
type CreateFavoriteWithUserRequest struct {
	UserID uint `json:"user_id" binding:"required,min=1"`
	CreateFavoriteRequest
}

const (
	EventCreated = "favorite_created"
	EventDeleted = "favorite_deleted"
)

// FavoriteEvent is published to the owner's channel on every change.
type FavoriteEvent struct {
	Type       string                      `json:"type"`
	UserID     uint                        `json:"user_id"`
	FavoriteID uint                        `json:"favorite_id"`
	Favorite   *commonDto.FavoriteResponse `json:"favorite,omitempty"`
}
