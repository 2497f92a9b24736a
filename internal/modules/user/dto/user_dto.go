package dto

// Passwords are capped at 72 bytes, the most bcrypt will hash.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,max=72"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=120"`
	Password *string `json:"password" binding:"omitempty,min=1,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      uint   `json:"user_id"`
}

type ProfileResponse struct {
	LoggedInAs string `json:"logged_in_as"`
	ID         uint   `json:"id"`
}
