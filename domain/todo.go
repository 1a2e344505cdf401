package domain

// Todo is a single todo item as exposed over the API. The id may be supplied
// by the upstream source during import; otherwise the store assigns it.
type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodoChanges is a partial update. Nil fields keep their stored value.
type TodoChanges struct {
	UserID    *int    `json:"userId"`
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// TodoFilter selects todos by title substring and completion state. A nil
// Completed and an empty Title are no-ops; set fields compose with AND.
type TodoFilter struct {
	Title     string
	Completed *bool
}

// TodoStats summarizes the completion state of the whole todo collection.
type TodoStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

// TodoPage is one page of todos together with the full collection count.
type TodoPage struct {
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Total   int64  `json:"total"`
	Todos   []Todo `json:"todos"`
}
