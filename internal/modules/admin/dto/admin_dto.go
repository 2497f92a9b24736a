package dto

type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,max=72"`
	IsActive *bool  `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

type UpdateUserInput struct {
	Email    *string `json:"email" binding:"omitempty,email,max=120"`
	Password *string `json:"password" binding:"omitempty,min=1,max=72"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}
