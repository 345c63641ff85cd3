package dto

import (
	"time"
	"todoList/internal/models/todo"
)

// UpdateTodoRequest: nil означает, что поле не меняется
type UpdateTodoRequest struct {
	Order *int    `json:"order,omitempty"`
	Done  *bool   `json:"done,omitempty"`
	Value *string `json:"value,omitempty"`
}

type TodoResponse struct {
	ID     string     `json:"todoId"`
	Value  string     `json:"value"`
	Order  int        `json:"order"`
	DoneAt *time.Time `json:"doneAt"`
}

type HealthResponse struct {
	Service   string     `json:"service"`
	Status    string     `json:"status"`
	Store     string     `json:"store"`
	Error     string     `json:"error,omitempty"`
	CheckedAt *time.Time `json:"checkedAt,omitempty"`
	Process   *Process   `json:"process,omitempty"`
	Host      *Host      `json:"host,omitempty"`
}

type Process struct {
	PID        int32  `json:"pid"`
	RSSBytes   uint64 `json:"rssBytes"`
	Goroutines int    `json:"goroutines"`
}

type Host struct {
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	MemoryTotalBytes  uint64  `json:"memoryTotalBytes"`
}

func (r UpdateTodoRequest) ToPatch() todo.Patch {
	return todo.Patch{
		Order: r.Order,
		Done:  r.Done,
		Value: r.Value,
	}
}

func FromTodo(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:     t.ID,
		Value:  t.Value,
		Order:  t.Order,
		DoneAt: t.DoneAt,
	}
}

func FromTodoList(todos []*todo.Todo) []TodoResponse {
	result := make([]TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = FromTodo(t)
	}
	return result
}
