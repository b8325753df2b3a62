package domain

import (
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID            int64     `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Done          bool      `db:"done" json:"done"`
	AttachmentURL *string   `db:"attachment_url" json:"attachment_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TodoInput is the writable part of a todo.
type TodoInput struct {
	Title       string
	Description *string
	Done        bool
}
