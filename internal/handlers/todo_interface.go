package handlers

import (
	"context"
	"todoList/internal/models/todo"
	"todoList/internal/worker"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	CreateTodo(ctx context.Context, value string) (*todo.Todo, error)
	GetTodos(ctx context.Context) ([]*todo.Todo, error)
	GetTodoByID(ctx context.Context, id string) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch todo.Patch) error
	DeleteTodo(ctx context.Context, id string) error
}

// HealthReporter отдаёт последний снимок состояния, собранный воркером
type HealthReporter interface {
	Status() worker.Status
	Check(ctx context.Context) worker.Status
}
