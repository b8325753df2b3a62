package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
)

// memoryUserRepo mimics the postgres user store, including the conditional
// reset token redemption.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	createErr         error
	updatePasswordErr error
	clearCalls        int
	lookups           int
	consumes          int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *memoryUserRepo) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	now := time.Now()
	u := &domain.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	r.users[u.ID] = u
	return clone(u), nil
}

func (r *memoryUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memoryUserRepo) FindByResetToken(ctx context.Context, digest string) (*domain.User, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()
	return r.find(func(u *domain.User) bool { return u.ResetToken != nil && *u.ResetToken == digest })
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updatePasswordErr != nil {
		return r.updatePasswordErr
	}
	u, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memoryUserRepo) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.ResetToken = &digest
	u.ResetTokenExpiry = &expiresAt
	return nil
}

func (r *memoryUserRepo) ClearResetToken(ctx context.Context, id uuid.UUID, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearCalls++
	u, ok := r.users[id]
	if ok && u.ResetToken != nil && *u.ResetToken == digest {
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
	}
	return nil
}

func (r *memoryUserRepo) ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumes++
	for _, u := range r.users {
		if u.ResetToken == nil || *u.ResetToken != digest {
			continue
		}
		if u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(now) {
			return nil, sql.ErrNoRows
		}
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
		return clone(u), nil
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) get(id uuid.UUID) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.users[id])
}

type fakeResetMailer struct {
	sent []struct {
		email string
		link  string
	}
	err error
}

func (f *fakeResetMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	f.sent = append(f.sent, struct {
		email string
		link  string
	}{email: email, link: link})
	return f.err
}

type memoryTodoRepo struct {
	nextID int64
	todos  map[int64]*domain.Todo
	err    error
}

func newMemoryTodoRepo() *memoryTodoRepo {
	return &memoryTodoRepo{todos: make(map[int64]*domain.Todo)}
}

func (r *memoryTodoRepo) owned(userID uuid.UUID, id int64) (*domain.Todo, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (r *memoryTodoRepo) Create(ctx context.Context, userID uuid.UUID, input domain.TodoInput) (*domain.Todo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	t := &domain.Todo{ID: r.nextID, UserID: userID, Title: input.Title, Description: input.Description, Done: input.Done, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.todos[t.ID] = t
	c := *t
	return &c, nil
}

func (r *memoryTodoRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Todo, error) {
	if r.err != nil {
		return nil, r.err
	}
	items := make([]domain.Todo, 0)
	for _, t := range r.todos {
		if t.UserID == userID {
			items = append(items, *t)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if offset >= len(items) {
		return []domain.Todo{}, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *memoryTodoRepo) FindByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	t, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	c := *t
	return &c, nil
}

func (r *memoryTodoRepo) Update(ctx context.Context, userID uuid.UUID, id int64, input domain.TodoInput) (*domain.Todo, error) {
	t, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	t.Title, t.Description, t.Done = input.Title, input.Description, input.Done
	c := *t
	return &c, nil
}

func (r *memoryTodoRepo) Delete(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	t, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	delete(r.todos, id)
	return t, nil
}

func (r *memoryTodoRepo) SetAttachment(ctx context.Context, userID uuid.UUID, id int64, url string) (*domain.Todo, error) {
	t, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	t.AttachmentURL = &url
	c := *t
	return &c, nil
}

type fakeStorage struct {
	uploaded []struct {
		bucket      string
		objectName  string
		contentType string
		size        int64
	}
	removed []string
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	n, _ := io.Copy(io.Discard, reader)
	if n != size {
		return "", errors.New("size mismatch")
	}
	f.uploaded = append(f.uploaded, struct {
		bucket      string
		objectName  string
		contentType string
		size        int64
	}{bucket: bucket, objectName: objectName, contentType: contentType, size: size})
	return "http://storage.local/" + bucket + "/" + objectName, nil
}

func (f *fakeStorage) Remove(ctx context.Context, bucket, objectName string) error {
	f.removed = append(f.removed, objectName)
	return nil
}
