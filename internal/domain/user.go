package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Username         string     `db:"username" json:"username"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	ResetToken       *string    `db:"reset_token" json:"-"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// HasPendingReset reports whether a reset token is outstanding at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetToken != nil && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}
