package dto

// IDRequest binds a numeric path id.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type UserFavoriteRequest struct {
	ID         uint `uri:"id" binding:"required,min=1"`
	FavoriteID uint `uri:"fid" binding:"required,min=1"`
}

type MessageResponse struct {
	Message string `json:"msg"`
}

type LocationResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Type      *string `json:"type"`
	Dimension *string `json:"dimension"`
}

// EpisodeSummary is an episode embedded in a character; it never embeds characters.
type EpisodeSummary struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	AirDate     *string `json:"air_date"`
	EpisodeCode string  `json:"episode_code"`
}

// CharacterSummary is a character embedded in an episode; it never embeds episodes.
type CharacterSummary struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	Species string  `json:"species"`
	Gender  string  `json:"gender"`
	Image   *string `json:"image"`
}

type CharacterResponse struct {
	ID       uint              `json:"id"`
	Name     string            `json:"name"`
	Status   string            `json:"status"`
	Species  string            `json:"species"`
	Gender   string            `json:"gender"`
	Origin   *LocationResponse `json:"origin"`
	Location *LocationResponse `json:"location"`
	Image    *string           `json:"image"`
	Episodes []EpisodeSummary  `json:"episodes"`
}

type EpisodeResponse struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	AirDate     *string            `json:"air_date"`
	EpisodeCode string             `json:"episode_code"`
	Characters  []CharacterSummary `json:"characters"`
}

type FavoriteResponse struct {
	ID        uint               `json:"id"`
	User      *string            `json:"user"`
	Character *CharacterResponse `json:"character"`
	Episode   *EpisodeResponse   `json:"episode"`
	Location  *LocationResponse  `json:"location"`
}

type UserResponse struct {
	ID        uint               `json:"id"`
	Email     string             `json:"email"`
	IsActive  bool               `json:"is_active"`
	IsAdmin   bool               `json:"is_admin"`
	Favorites []FavoriteResponse `json:"favorites"`
}

type SearchHit struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}
