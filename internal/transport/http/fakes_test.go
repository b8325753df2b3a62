package http

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
)

type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (r *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memUsers) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &domain.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.users = append(r.users, u)
	c := *u
	return &c, nil
}

func (r *memUsers) FindByResetToken(ctx context.Context, digest string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ResetToken != nil && *u.ResetToken == digest })
}

func (r *memUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUsers) update(id uuid.UUID, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			fn(u)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *memUsers) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	return r.update(id, func(u *domain.User) {
		u.ResetToken = &digest
		u.ResetTokenExpiry = &expiresAt
	})
}

func (r *memUsers) ClearResetToken(ctx context.Context, id uuid.UUID, digest string) error {
	_ = r.update(id, func(u *domain.User) {
		if u.ResetToken != nil && *u.ResetToken == digest {
			u.ResetToken, u.ResetTokenExpiry = nil, nil
		}
	})
	return nil
}

func (r *memUsers) ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == digest && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = passwordHash
			u.ResetToken, u.ResetTokenExpiry = nil, nil
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memTodos struct {
	nextID int64
	items  map[int64]domain.Todo
}

func newMemTodos() *memTodos {
	return &memTodos{items: make(map[int64]domain.Todo)}
}

func (r *memTodos) Create(ctx context.Context, userID uuid.UUID, in domain.TodoInput) (*domain.Todo, error) {
	r.nextID++
	t := domain.Todo{ID: r.nextID, UserID: userID, Title: in.Title, Description: in.Description, Done: in.Done, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.items[t.ID] = t
	return &t, nil
}

func (r *memTodos) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Todo, error) {
	out := make([]domain.Todo, 0)
	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTodos) FindByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r *memTodos) Update(ctx context.Context, userID uuid.UUID, id int64, in domain.TodoInput) (*domain.Todo, error) {
	t, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.Title, t.Description, t.Done = in.Title, in.Description, in.Done
	r.items[id] = *t
	return t, nil
}

func (r *memTodos) Delete(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	t, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	delete(r.items, id)
	return t, nil
}

func (r *memTodos) SetAttachment(ctx context.Context, userID uuid.UUID, id int64, url string) (*domain.Todo, error) {
	t, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.AttachmentURL = &url
	r.items[id] = *t
	return t, nil
}

type captureMailer struct {
	links []string
	err   error
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.links = append(m.links, link)
	return m.err
}
