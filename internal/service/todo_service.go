package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
	"github.com/njprem/Todo_APP_BackEnd/internal/media"
	"github.com/njprem/Todo_APP_BackEnd/internal/repository/ports"
)

const (
	defaultTodoLimit = 100
	maxTodoLimit     = 100
)

type TodoService struct {
	todos   ports.TodoRepository
	storage ports.ObjectStorage
	bucket  string
	limits  media.Limits
	log     zerolog.Logger
}

// NewTodoService wires the todo store. storage may be nil, in which case
// AttachImage reports ErrAttachmentsDisabled.
func NewTodoService(todos ports.TodoRepository, storage ports.ObjectStorage, bucket string, maxAttachmentBytes int64, logger zerolog.Logger) *TodoService {
	return &TodoService{
		todos:   todos,
		storage: storage,
		bucket:  bucket,
		limits:  media.Limits{MaxBytes: maxAttachmentBytes, MaxDimension: media.DefaultMaxDimension},
		log:     logger.With().Str("component", "todos").Logger(),
	}
}

func normalizeTodoInput(in domain.TodoInput) (domain.TodoInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			in.Description = nil
		} else {
			in.Description = &desc
		}
	}
	err := validation.Errors{
		"title":       validation.Validate(in.Title, validation.Required, validation.Length(1, 200)),
		"description": validation.Validate(in.Description, validation.Length(0, 2000)),
	}.Filter()
	if err != nil {
		return in, validationError(err)
	}
	return in, nil
}

func normalizeTodoPagination(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultTodoLimit
	}
	if limit > maxTodoLimit {
		limit = maxTodoLimit
	}
	return skip, limit
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, in domain.TodoInput) (*domain.Todo, error) {
	in, err := normalizeTodoInput(in)
	if err != nil {
		return nil, err
	}
	return s.todos.Create(ctx, userID, in)
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Todo, error) {
	skip, limit = normalizeTodoPagination(skip, limit)
	return s.todos.ListByUser(ctx, userID, limit, skip)
}

func (s *TodoService) Get(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	todo, err := s.todos.FindByID(ctx, userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, userID uuid.UUID, id int64, in domain.TodoInput) (*domain.Todo, error) {
	in, err := normalizeTodoInput(in)
	if err != nil {
		return nil, err
	}
	todo, err := s.todos.Update(ctx, userID, id, in)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID uuid.UUID, id int64) (*domain.Todo, error) {
	todo, err := s.todos.Delete(ctx, userID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	if todo.AttachmentURL != nil {
		s.removeObject(ctx, *todo.AttachmentURL)
	}
	return todo, nil
}

// AttachImage stores an image for the todo and records its URL, replacing
// any previous attachment.
func (s *TodoService) AttachImage(ctx context.Context, userID uuid.UUID, id int64, r io.Reader) (*domain.Todo, error) {
	if s.storage == nil {
		return nil, ErrAttachmentsDisabled
	}

	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	img, err := media.Inspect(r, s.limits)
	if err != nil {
		if errors.Is(err, media.ErrEmptyImage) || errors.Is(err, media.ErrImageTooLarge) || errors.Is(err, media.ErrUnsupportedImage) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
		}
		return nil, err
	}

	objectName := fmt.Sprintf("todos/%s/%d/%s%s", userID, id, uuid.NewString(), img.Extension)
	location, err := s.storage.Upload(ctx, s.bucket, objectName, img.ContentType, img.Reader(), img.Size())
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	todo, err := s.todos.SetAttachment(ctx, userID, id, location)
	if err != nil {
		s.removeObject(ctx, location)
		if isNotFound(err) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	if existing.AttachmentURL != nil && *existing.AttachmentURL != location {
		s.removeObject(ctx, *existing.AttachmentURL)
	}
	return todo, nil
}

func (s *TodoService) removeObject(ctx context.Context, objectURL string) {
	if s.storage == nil {
		return
	}
	name, ok := objectNameFromURL(objectURL, s.bucket)
	if !ok {
		return
	}
	if err := s.storage.Remove(ctx, s.bucket, name); err != nil {
		s.log.Warn().Err(err).Str("object", name).Msg("remove attachment")
	}
}

func objectNameFromURL(raw, bucket string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	prefix := "/" + bucket + "/"
	idx := strings.Index(u.Path, prefix)
	if idx < 0 {
		return "", false
	}
	name := u.Path[idx+len(prefix):]
	return name, name != ""
}
