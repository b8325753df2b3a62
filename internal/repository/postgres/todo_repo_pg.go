package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/ports"
)

const todoColumns = `id, user_id, title, description, done, attachment_url, created_at, updated_at`

type TodoRepository struct {
	db *sqlx.DB
}

func NewTodoRepo(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, userID uuid.UUID, input domain.TodoInput) (*domain.Todo, error) {
	const query = `
		INSERT INTO todos (user_id, title, description, done)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + todoColumns

	var todo domain.Todo
	if err := r.db.GetContext(ctx, &todo, query, userID, input.Title, input.Description, input.Done); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Todo, error) {
	const query = `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Todo, 0)
	for rows.Next() {
		var item domain.Todo
		if err := rows.StructScan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	const query = `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	var todo domain.Todo
	if err := r.db.GetContext(ctx, &todo, query, id, userID); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) Update(ctx context.Context, userID uuid.UUID, id int64, input domain.TodoInput) (*domain.Todo, error) {
	const query = `
		UPDATE todos
		SET title = $3,
		    description = $4,
		    done = $5,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	var todo domain.Todo
	if err := r.db.GetContext(ctx, &todo, query, id, userID, input.Title, input.Description, input.Done); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	const query = `
		DELETE FROM todos
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	var todo domain.Todo
	if err := r.db.GetContext(ctx, &todo, query, id, userID); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) SetAttachment(ctx context.Context, userID uuid.UUID, id int64, url string) (*domain.Todo, error) {
	const query = `
		UPDATE todos
		SET attachment_url = $3,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	var todo domain.Todo
	if err := r.db.GetContext(ctx, &todo, query, id, userID, url); err != nil {
		return nil, err
	}
	return &todo, nil
}

var _ ports.TodoRepository = (*TodoRepository)(nil)
