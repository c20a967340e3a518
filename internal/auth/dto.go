package auth

import "strings"

// SignUpRequest is the registration payload. Password length is capped only
// to bound the argon2 input.
type SignUpRequest struct {
	Username string  `json:"username" validate:"required,max=256"`
	Password string  `json:"password" validate:"required,max=1024"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// Normalize trims the username so validation sees the stored value.
func (r *SignUpRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// SignInRequest carries credentials from either a form or a JSON body. Blank
// fields are not rejected here: they fail like any other bad pair.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *SignInRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// TokenResponse is returned by sign-in and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
