package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
)

// TodoRepository scopes every query by owner; rows of other users behave as
// missing (sql.ErrNoRows).
type TodoRepository interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.TodoInput) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Todo, error)
	FindByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, input domain.TodoInput) (*domain.Todo, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error)
	SetAttachment(ctx context.Context, userID uuid.UUID, id int64, url string) (*domain.Todo, error)
}
