package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"todo-api/domain"
)

var (
	// ErrNotFound is returned when an id has no matching row.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords so
	// callers cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Storage provides access to the relational store backing users and todos.
type Storage struct {
	db *gorm.DB
}

type userEntity struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userEntity) TableName() string { return "users" }

type todoEntity struct {
	ID        int `gorm:"primaryKey"`
	UserID    int
	Title     string `gorm:"not null"`
	Completed bool   `gorm:"not null;default:false"`
}

func (todoEntity) TableName() string { return "todos" }

// New opens a postgres connection from the given DSN and runs migrations.
func New(dsn string) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing gorm handle and runs migrations on it.
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&userEntity{}, &todoEntity{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

// CreateUser stores a new account with a bcrypt hash of the password. The
// plaintext is never persisted.
func (s *Storage) CreateUser(ctx context.Context, username, email, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&userEntity{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := userEntity{Username: username, Email: email, PasswordHash: string(hash)}
	return s.db.WithContext(ctx).Create(&user).Error
}

// VerifyUser checks the password for the given email and returns the user id
// on success. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (s *Storage) VerifyUser(ctx context.Context, email, password string) (uint, error) {
	var user userEntity
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

// UserByID fetches an account by primary key.
func (s *Storage) UserByID(ctx context.Context, id uint) (domain.User, error) {
	var user userEntity
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return domain.User{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// ListTodos returns every todo in store order.
func (s *Storage) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	var rows []todoEntity
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTodos(rows), nil
}

// GetTodo fetches a single todo by id.
func (s *Storage) GetTodo(ctx context.Context, id int) (domain.Todo, error) {
	var row todoEntity
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Todo{}, ErrNotFound
		}
		return domain.Todo{}, err
	}
	return toDomainTodo(row), nil
}

// CreateTodo inserts a todo. The store assigns the id unless the caller
// supplies a non-zero one, which the import path does.
func (s *Storage) CreateTodo(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	row := todoEntity{ID: todo.ID, UserID: todo.UserID, Title: todo.Title, Completed: todo.Completed}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Todo{}, err
	}
	if todo.ID != 0 {
		if err := s.syncTodoIDSequence(ctx); err != nil {
			return domain.Todo{}, err
		}
	}
	return toDomainTodo(row), nil
}

// UpdateTodo applies a partial update. Nil change fields keep their stored
// value.
func (s *Storage) UpdateTodo(ctx context.Context, id int, changes domain.TodoChanges) (domain.Todo, error) {
	var row todoEntity
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Todo{}, ErrNotFound
		}
		return domain.Todo{}, err
	}

	updates := map[string]any{}
	if changes.UserID != nil {
		row.UserID = *changes.UserID
		updates["user_id"] = *changes.UserID
	}
	if changes.Title != nil {
		row.Title = *changes.Title
		updates["title"] = *changes.Title
	}
	if changes.Completed != nil {
		row.Completed = *changes.Completed
		updates["completed"] = *changes.Completed
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&row).Updates(updates).Error; err != nil {
			return domain.Todo{}, err
		}
	}
	return toDomainTodo(row), nil
}

// DeleteTodo removes a todo by id.
func (s *Storage) DeleteTodo(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&todoEntity{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchTodos filters by case-insensitive title substring and exact
// completion state. Unset filter fields are no-ops.
func (s *Storage) SearchTodos(ctx context.Context, filter domain.TodoFilter) ([]domain.Todo, error) {
	q := s.db.WithContext(ctx).Model(&todoEntity{})
	if filter.Title != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Title+"%")
	}
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	var rows []todoEntity
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTodos(rows), nil
}

// PageTodos returns the 1-indexed page of todos plus the full count. Pages
// past the end come back empty with the count intact.
func (s *Storage) PageTodos(ctx context.Context, page, perPage int) ([]domain.Todo, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&todoEntity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []todoEntity
	offset := (page - 1) * perPage
	if err := s.db.WithContext(ctx).Offset(offset).Limit(perPage).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDomainTodos(rows), total, nil
}

// TodoStats counts totals live; nothing is cached.
func (s *Storage) TodoStats(ctx context.Context) (domain.TodoStats, error) {
	var total, completed int64
	if err := s.db.WithContext(ctx).Model(&todoEntity{}).Count(&total).Error; err != nil {
		return domain.TodoStats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&todoEntity{}).Where("completed = ?", true).Count(&completed).Error; err != nil {
		return domain.TodoStats{}, err
	}
	return domain.TodoStats{Total: total, Completed: completed, Pending: total - completed}, nil
}

// ImportTodos inserts the given todos, silently skipping any whose id is
// already present, and returns the number of new rows.
func (s *Storage) ImportTodos(ctx context.Context, todos []domain.Todo) (int, error) {
	saved := 0
	for _, t := range todos {
		var count int64
		if err := s.db.WithContext(ctx).Model(&todoEntity{}).Where("id = ?", t.ID).Count(&count).Error; err != nil {
			return saved, err
		}
		if count > 0 {
			continue
		}
		row := todoEntity{ID: t.ID, UserID: t.UserID, Title: t.Title, Completed: t.Completed}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return saved, err
		}
		saved++
	}
	if saved > 0 {
		if err := s.syncTodoIDSequence(ctx); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// syncTodoIDSequence advances the id sequence past explicitly supplied ids.
// Inserting rows with their own ids does not touch the sequence, so without
// this the next server-assigned id would collide with an imported one.
func (s *Storage) syncTodoIDSequence(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(
		"SELECT setval(pg_get_serial_sequence('todos','id'), (SELECT COALESCE(MAX(id), 1) FROM todos))",
	).Error
}

func toDomainTodo(row todoEntity) domain.Todo {
	return domain.Todo{ID: row.ID, UserID: row.UserID, Title: row.Title, Completed: row.Completed}
}

func toDomainTodos(rows []todoEntity) []domain.Todo {
	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, toDomainTodo(row))
	}
	return todos
}
