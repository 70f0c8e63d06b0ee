package dto

import "strings"

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
)

// RegisterRequest is validated after Normalize. Password is bounded in bytes,
// which is what bcrypt accepts.
type RegisterRequest struct {
	Username  string `json:"username" binding:"notblank,min=3,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=6,maxbytes=72"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
}

// Normalize trims the identifying fields. The password is kept as sent.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

type LoginRequest struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"required"`
	// ClientIP is filled in by the handler and scopes failed-login counting.
	ClientIP string `json:"-"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
	Email       string `json:"email"`
}

type ValidateResponse struct {
	Message  string   `json:"message"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}
