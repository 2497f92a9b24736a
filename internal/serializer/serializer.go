// Package serializer turns entities into transport records.
//
// Relations are inlined one level deep: a character's episodes do not carry
// their characters and an episode's characters do not carry their episodes.
// Empty relations become empty slices and missing ones become nil.
package serializer

import (
	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/dto"
)

func Location(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Type:      l.Type,
		Dimension: l.Dimension,
	}
}

func Locations(locations []*entity.Location) []dto.LocationResponse {
	out := make([]dto.LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, *Location(l))
	}
	return out
}

func Character(c *entity.Character) *dto.CharacterResponse {
	if c == nil {
		return nil
	}

	episodes := make([]dto.EpisodeSummary, 0, len(c.Episodes))
	for _, e := range c.Episodes {
		episodes = append(episodes, dto.EpisodeSummary{
			ID:          e.ID,
			Name:        e.Name,
			AirDate:     e.AirDate,
			EpisodeCode: e.EpisodeCode,
		})
	}

	return &dto.CharacterResponse{
		ID:       c.ID,
		Name:     c.Name,
		Status:   c.Status,
		Species:  c.Species,
		Gender:   c.Gender,
		Origin:   Location(c.Origin),
		Location: Location(c.Location),
		Image:    c.Image,
		Episodes: episodes,
	}
}

func Characters(characters []*entity.Character) []dto.CharacterResponse {
	out := make([]dto.CharacterResponse, 0, len(characters))
	for _, c := range characters {
		out = append(out, *Character(c))
	}
	return out
}

func Episode(e *entity.Episode) *dto.EpisodeResponse {
	if e == nil {
		return nil
	}

	characters := make([]dto.CharacterSummary, 0, len(e.Characters))
	for _, c := range e.Characters {
		characters = append(characters, dto.CharacterSummary{
			ID:      c.ID,
			Name:    c.Name,
			Status:  c.Status,
			Species: c.Species,
			Gender:  c.Gender,
			Image:   c.Image,
		})
	}

	return &dto.EpisodeResponse{
		ID:          e.ID,
		Name:        e.Name,
		AirDate:     e.AirDate,
		EpisodeCode: e.EpisodeCode,
		Characters:  characters,
	}
}

func Episodes(episodes []*entity.Episode) []dto.EpisodeResponse {
	out := make([]dto.EpisodeResponse, 0, len(episodes))
	for _, e := range episodes {
		out = append(out, *Episode(e))
	}
	return out
}

// Favorite exposes only the owner's email.
func Favorite(f *entity.Favorite) *dto.FavoriteResponse {
	if f == nil {
		return nil
	}

	var email *string
	if f.User != nil {
		e := f.User.Email
		email = &e
	}

	return &dto.FavoriteResponse{
		ID:        f.ID,
		User:      email,
		Character: Character(f.Character),
		Episode:   Episode(f.Episode),
		Location:  Location(f.Location),
	}
}

func Favorites(favorites []*entity.Favorite) []dto.FavoriteResponse {
	out := make([]dto.FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, *Favorite(f))
	}
	return out
}

func User(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}

	favorites := make([]dto.FavoriteResponse, 0, len(u.Favorites))
	for i := range u.Favorites {
		fav := u.Favorites[i]
		if fav.User == nil {
			fav.User = u
		}
		favorites = append(favorites, *Favorite(&fav))
	}

	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		Favorites: favorites,
	}
}

func Users(users []*entity.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *User(u))
	}
	return out
}
