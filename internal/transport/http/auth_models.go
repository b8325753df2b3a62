package http

import (
	"time"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Msg string `json:"msg" example:"Password has been reset"`
}

// AuthUser is the public view of an account.
type AuthUser struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-02T09:30:00Z"`
}

// AuthTokenResponse is returned by the token endpoint.
type AuthTokenResponse struct {
	AccessToken string   `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string   `json:"token_type" example:"bearer"`
	ExpiresAt   string   `json:"expires_at" example:"2024-01-02T09:30:00Z"`
	User        AuthUser `json:"user"`
}

// AuthUserResponse wraps a user object.
type AuthUserResponse struct {
	User AuthUser `json:"user"`
}

type SignupRequest struct {
	Username string `json:"username" form:"username" example:"alice"`
	Email    string `json:"email" form:"email" example:"alice@example.com"`
	Password string `json:"password" form:"password" example:"pw123"`
}

// LoginRequest accepts JSON or an OAuth2 style password form.
type LoginRequest struct {
	Username string `json:"username" form:"username" example:"alice"`
	Password string `json:"password" form:"password" example:"pw123"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" example:"pw123"`
	NewPassword string `json:"new_password" form:"new_password" example:"newpw"`
}

// ForgotPasswordRequest takes an email address or a username.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" example:"alice@example.com"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" form:"reset_token" example:"4f9c2e..."`
	NewPassword string `json:"new_password" form:"new_password" example:"newpw"`
}

func toAuthUser(u *domain.User) AuthUser {
	return AuthUser{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
