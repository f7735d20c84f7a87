package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,excludes=_"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token          string `json:"token"`
	ParticipantID  string `json:"participant_id"`
	TokenExpiresAt string `json:"token_expires_at"`
}
