package api

import (
	"context"

	"todo-api/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	CreateUser(ctx context.Context, username, email, password string) error
	VerifyUser(ctx context.Context, email, password string) (uint, error)
	UserByID(ctx context.Context, id uint) (domain.User, error)

	ListTodos(ctx context.Context) ([]domain.Todo, error)
	GetTodo(ctx context.Context, id int) (domain.Todo, error)
	CreateTodo(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	UpdateTodo(ctx context.Context, id int, changes domain.TodoChanges) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id int) error
	SearchTodos(ctx context.Context, filter domain.TodoFilter) ([]domain.Todo, error)
	PageTodos(ctx context.Context, page, perPage int) ([]domain.Todo, int64, error)
	TodoStats(ctx context.Context) (domain.TodoStats, error)
	ImportTodos(ctx context.Context, todos []domain.Todo) (int, error)
}

// Authenticator issues bearer tokens and resolves them back to user ids.
type Authenticator interface {
	IssueToken(userID uint) (string, error)
	UserIDFromAuthHeader(header string) (uint, error)
}

// TodoImporter pulls the upstream todo collection into storage.
type TodoImporter interface {
	ImportAll(ctx context.Context) (int, error)
}
