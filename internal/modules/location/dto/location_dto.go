package dto

type CreateLocationRequest struct {
	Name      string  `json:"name" binding:"required,max=120"`
	Type      *string `json:"type" binding:"omitempty,max=50"`
	Dimension *string `json:"dimension" binding:"omitempty,max=50"`
}

// UpdateLocationRequest leaves fields that are absent or null untouched.
type UpdateLocationRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=120"`
	Type      *string `json:"type" binding:"omitempty,max=50"`
	Dimension *string `json:"dimension" binding:"omitempty,max=50"`
}

type LocationFilter struct {
	Name      string `form:"name"`
	Type      string `form:"type"`
	Dimension string `form:"dimension"`
}
