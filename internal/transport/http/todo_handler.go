package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Todo_APP_BackEnd/internal/domain"
	"github.com/njprem/Todo_APP_BackEnd/internal/service"
	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

const maxListLimit = 100

type TodoHandler struct {
	todos *service.TodoService
}

type TodoRequest struct {
	Title       string  `json:"title" example:"Buy milk"`
	Description *string `json:"description,omitempty" example:"2 litres"`
	Done        bool    `json:"done" example:"false"`
}

type TodoListResponse struct {
	Items []domain.Todo `json:"items"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

func RegisterTodos(e *echo.Echo, auth Authenticator, todos *service.TodoService) {
	h := &TodoHandler{todos: todos}

	g := e.Group("/api/v1/todos", RequireAuth(auth))
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/:id/attachment", h.attach)
}

func (r TodoRequest) input() domain.TodoInput {
	return domain.TodoInput{Title: r.Title, Description: r.Description, Done: r.Done}
}

func todoID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	return id, err == nil && id > 0
}

func (h *TodoHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	var req TodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	todo, err := h.todos.Create(c.Request().Context(), user.ID, req.input())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}

	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("skip must be a non-negative integer"))
	}
	limit, err := queryInt(c, "limit", maxListLimit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("limit must be a non-negative integer"))
	}

	if limit == 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := h.todos.List(c.Request().Context(), user.ID, skip, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, TodoListResponse{Items: items, Skip: skip, Limit: limit})
}

func (h *TodoHandler) get(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	id, ok := todoID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("todo not found"))
	}

	todo, err := h.todos.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	id, ok := todoID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("todo not found"))
	}
	var req TodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	todo, err := h.todos.Update(c.Request().Context(), user.ID, id, req.input())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) delete(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	id, ok := todoID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("todo not found"))
	}

	todo, err := h.todos.Delete(c.Request().Context(), user.ID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) attach(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c, "authentication required")
	}
	id, ok := todoID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("todo not found"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("could not read uploaded file"))
	}
	defer file.Close()

	todo, err := h.todos.AttachImage(c.Request().Context(), user.ID, id, file)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, todo)
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
