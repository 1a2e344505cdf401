package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todo-api/domain"
	"todo-api/storage"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

type createTodoRequest struct {
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func listTodos(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTodoRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		fetchStart := time.Now()
		todos, fetchErr := store.ListTodos(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to list todos"})
			return err
		}
		if todos == nil {
			todos = []domain.Todo{}
		}
		metrics.SetTodosReturned(len(todos))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, todos)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req createTodoRequest
		if err := decodeBody(c.Request().Body, &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}
		if req.Title == "" {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "title is required"})
		}

		todo, err := store.CreateTodo(ctx, domain.Todo{UserID: req.UserID, Title: req.Title, Completed: req.Completed})
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to create todo"})
		}
		return c.JSON(http.StatusCreated, todoResponse{Message: "Todo created", Todo: todo})
	}
}

func getTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := todoIDParam(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid todo id"})
		}

		todo, err := store.GetTodo(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, messageResponse{Message: "Todo not found"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to load todo"})
		}
		return c.JSON(http.StatusOK, todo)
	}
}

func updateTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := todoIDParam(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid todo id"})
		}

		var changes domain.TodoChanges
		if err := decodeBody(c.Request().Body, &changes); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}

		todo, err := store.UpdateTodo(ctx, id, changes)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, messageResponse{Message: "Todo not found"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to update todo"})
		}
		return c.JSON(http.StatusOK, todoResponse{Message: "Todo updated", Todo: todo})
	}
}

func deleteTodo(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := todoIDParam(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid todo id"})
		}

		if err := store.DeleteTodo(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusNotFound, messageResponse{Message: "Todo not found"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to delete todo"})
		}
		return c.JSON(http.StatusOK, messageResponse{Message: "Todo deleted"})
	}
}

func searchTodos(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		filter := domain.TodoFilter{
			Title:     c.QueryParam("title"),
			Completed: parseCompletedParam(c.QueryParam("completed")),
		}
		todos, err := store.SearchTodos(ctx, filter)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to search todos"})
		}
		if todos == nil {
			todos = []domain.Todo{}
		}
		return c.JSON(http.StatusOK, todos)
	}
}

func pageTodos(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		page, perPage := parsePageParams(c.QueryParam("page"), c.QueryParam("per_page"))
		todos, total, err := store.PageTodos(ctx, page, perPage)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to page todos"})
		}
		if todos == nil {
			todos = []domain.Todo{}
		}
		return c.JSON(http.StatusOK, domain.TodoPage{Page: page, PerPage: perPage, Total: total, Todos: todos})
	}
}

func todoStats(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		stats, err := store.TodoStats(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to compute stats"})
		}
		return c.JSON(http.StatusOK, stats)
	}
}

func saveTodos(imp TodoImporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		saved, err := imp.ImportAll(ctx)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) {
				return c.JSON(fetchErr.StatusCode, messageResponse{Message: "Failed to fetch data"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to import todos"})
		}
		return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("%d todos saved to DB", saved)})
	}
}

// parseCompletedParam maps "true"/"false" (any case) to a bool filter and
// anything else, including the empty string, to no filter.
func parseCompletedParam(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

// parsePageParams applies the 1/10 defaults. Unparsable or non-positive
// values fall back to the defaults rather than failing the request.
func parsePageParams(pageRaw, perPageRaw string) (page, perPage int) {
	page = defaultPage
	perPage = defaultPerPage
	if n, err := strconv.Atoi(strings.TrimSpace(pageRaw)); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(perPageRaw)); err == nil && n > 0 {
		perPage = n
	}
	return page, perPage
}

func todoIDParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}
