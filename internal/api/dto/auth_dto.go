package dto

import "time"

// RegisterRequest creates an account.
type RegisterRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// LoginRequest authenticates with credentials.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// UpdateProfileRequest changes the caller's own name and e-mail.
type UpdateProfileRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	SenhaAtual string `json:"senhaAtual"`
	NovaSenha  string `json:"novaSenha"`
}

// AuthResponse is returned on register, login and refresh.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Usuario   UserResponse `json:"usuario"`
}

// HeartbeatResponse acknowledges an activity ping.
type HeartbeatResponse struct {
	LastActivityAt time.Time `json:"lastActivityAt"`
}
