package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Register wires up all API routes on the provided Echo instance. All
// dependencies are passed in explicitly; handlers hold no package state.
func Register(e *echo.Echo, store Storage, auth Authenticator, imp TodoImporter, logger *log.Logger) {
	e.GET("/api/hello", hello())
	e.POST("/api/register", register(store))
	e.POST("/api/login", login(store, auth))
	e.GET("/api/dashboard", dashboard(store, auth))
	e.POST("/api/logout", logout())

	e.POST("/api/todo/save", saveTodos(imp))
	e.GET("/api/todo", listTodos(store, logger))
	e.POST("/api/todo", createTodo(store))
	e.GET("/api/todo/search", searchTodos(store))
	e.GET("/api/todo/page", pageTodos(store))
	e.GET("/api/todo/stats", todoStats(store))
	e.GET("/api/todo/:id", getTodo(store))
	e.PUT("/api/todo/:id", updateTodo(store))
	e.DELETE("/api/todo/:id", deleteTodo(store))

	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}
