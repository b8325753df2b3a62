package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

func TestTodoCreateValidatesAndTrims(t *testing.T) {
	ctx := context.Background()
	svc := NewTodoService(newMemoryTodoRepo(), nil, "", 0, zerolog.Nop())
	userID := uuid.New()

	todo, err := svc.Create(ctx, userID, domain.TodoInput{Title: "  buy milk ", Description: strPtr("   ")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if todo.Title != "buy milk" || todo.Description != nil {
		t.Fatalf("unexpected todo: %+v", todo)
	}

	_, err = svc.Create(ctx, userID, domain.TodoInput{Title: "  "})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["title"] == "" {
		t.Fatalf("expected title validation error, got %v", err)
	}

	_, err = svc.Create(ctx, userID, domain.TodoInput{Title: "x", Description: strPtr(strings.Repeat("d", 2001))})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for long description, got %v", err)
	}
}

func TestTodoOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewTodoService(newMemoryTodoRepo(), nil, "", 0, zerolog.Nop())
	owner, stranger := uuid.New(), uuid.New()

	todo, err := svc.Create(ctx, owner, domain.TodoInput{Title: "mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, stranger, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, stranger, todo.ID, domain.TodoInput{Title: "stolen"}); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound on update, got %v", err)
	}
	if _, err := svc.Delete(ctx, stranger, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound on delete, got %v", err)
	}

	updated, err := svc.Update(ctx, owner, todo.ID, domain.TodoInput{Title: "mine", Done: true})
	if err != nil || !updated.Done {
		t.Fatalf("expected owner update, got %+v, %v", updated, err)
	}
	if _, err := svc.Delete(ctx, owner, todo.ID); err != nil {
		t.Fatalf("expected owner delete, got %v", err)
	}
	if _, err := svc.Get(ctx, owner, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected deleted todo to be gone, got %v", err)
	}
}

func TestTodoListPagination(t *testing.T) {
	ctx := context.Background()
	svc := NewTodoService(newMemoryTodoRepo(), nil, "", 0, zerolog.Nop())
	userID := uuid.New()
	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, userID, domain.TodoInput{Title: "task"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, uuid.New(), domain.TodoInput{Title: "someone else"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.List(ctx, userID, -3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 todos, got %d", len(all))
	}

	page, err := svc.List(ctx, userID, 3, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].ID != all[3].ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	skip, limit := normalizeTodoPagination(0, 1000)
	if skip != 0 || limit != maxTodoLimit {
		t.Fatalf("expected limit clamp, got %d/%d", skip, limit)
	}
}

func TestTodoAttachImage(t *testing.T) {
	ctx := context.Background()
	storage := &fakeStorage{}
	svc := NewTodoService(newMemoryTodoRepo(), storage, "todo-attachments", 1<<20, zerolog.Nop())
	userID := uuid.New()
	todo, _ := svc.Create(ctx, userID, domain.TodoInput{Title: "with picture"})

	updated, err := svc.AttachImage(ctx, userID, todo.ID, bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatalf("expected attachment, got %v", err)
	}
	if updated.AttachmentURL == nil || !strings.HasSuffix(*updated.AttachmentURL, ".png") {
		t.Fatalf("unexpected attachment url: %v", updated.AttachmentURL)
	}
	if len(storage.uploaded) != 1 || storage.uploaded[0].contentType != "image/png" || storage.uploaded[0].bucket != "todo-attachments" {
		t.Fatalf("unexpected upload: %+v", storage.uploaded)
	}
	first := storage.uploaded[0].objectName

	if _, err := svc.AttachImage(ctx, userID, todo.ID, bytes.NewReader(pngBytes(t))); err != nil {
		t.Fatalf("expected replacement, got %v", err)
	}
	if len(storage.removed) != 1 || storage.removed[0] != first {
		t.Fatalf("expected previous object to be removed, got %v", storage.removed)
	}

	if _, err := svc.AttachImage(ctx, userID, todo.ID, strings.NewReader("plain text")); !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected ErrInvalidAttachment, got %v", err)
	}
	if _, err := svc.AttachImage(ctx, uuid.New(), todo.ID, bytes.NewReader(pngBytes(t))); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}

	if _, err := svc.Delete(ctx, userID, todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(storage.removed) != 2 {
		t.Fatalf("expected attachment cleanup on delete, got %v", storage.removed)
	}
}

func TestTodoAttachImageDisabled(t *testing.T) {
	svc := NewTodoService(newMemoryTodoRepo(), nil, "", 0, zerolog.Nop())
	if _, err := svc.AttachImage(context.Background(), uuid.New(), 1, strings.NewReader("x")); !errors.Is(err, ErrAttachmentsDisabled) {
		t.Fatalf("expected ErrAttachmentsDisabled, got %v", err)
	}
}

func TestObjectNameFromURL(t *testing.T) {
	name, ok := objectNameFromURL("https://cdn.example.com/todo-attachments/todos/u/1/a.png", "todo-attachments")
	if !ok || name != "todos/u/1/a.png" {
		t.Fatalf("unexpected object name %q (%v)", name, ok)
	}
	if _, ok := objectNameFromURL("https://cdn.example.com/other/a.png", "todo-attachments"); ok {
		t.Fatal("expected foreign bucket url to be ignored")
	}
}
