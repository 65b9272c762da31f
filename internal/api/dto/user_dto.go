package dto

import "time"

// CreateUserRequest creates an account with an explicit role (admin only).
type CreateUserRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Role  int    `json:"role"`
}

// UpdateUserRequest changes another account (admin only).
type UpdateUserRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Role  *int   `json:"role"`
}

// UserResponse is the account shape exposed over the API.
type UserResponse struct {
	ID              string     `json:"id"`
	Nome            string     `json:"nome"`
	Email           string     `json:"email"`
	Role            int        `json:"role"`
	RoleLabel       string     `json:"roleLabel"`
	CriadoEm        time.Time  `json:"criadoEm"`
	UltimoLogin     *time.Time `json:"ultimoLogin"`
	UltimaAtividade *time.Time `json:"ultimaAtividade"`
}
