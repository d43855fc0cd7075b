// AngelaMos | 2026
// dto.go

package auth

import (
	"strings"
)

type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email"    validate:"required,email,max=254"`
}

func (r *SignupRequest) Trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// SignupResponse echoes the registered identity. The confirmation code is
// only ever delivered out of band.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenRequest struct {
	Username         string `json:"username"          validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=555"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type TokenErrorResponse struct {
	TokenError string `json:"token_error"`
}
