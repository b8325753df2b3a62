package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SetResetToken stores the token digest and expiry together, replacing any
	// earlier token of the user.
	SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error
	// ClearResetToken drops the user's token only while it still equals digest.
	ClearResetToken(ctx context.Context, id uuid.UUID, digest string) error
	// FindByResetToken returns the user holding digest, expired or not.
	FindByResetToken(ctx context.Context, digest string) (*domain.User, error)
	// ConsumeResetToken swaps in passwordHash and clears the token in one
	// statement when digest matches an unexpired token. sql.ErrNoRows otherwise.
	ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*domain.User, error)
}
