package service

import (
	"context"
	"todoList/internal/models/todo"
)

type TodoRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *todo.Todo) error
	Update(context.Context, *todo.Todo) error
	GetByID(context.Context, string) (*todo.Todo, error)
	GetByOrder(context.Context, int) (*todo.Todo, error)
	GetTopByOrder(context.Context) (*todo.Todo, error)
	GetAllSorted(context.Context) ([]*todo.Todo, error)
	Delete(context.Context, string) error
}

// OrderSwapper реализуют хранилища, умеющие менять order двух записей атомарно
type OrderSwapper interface {
	SwapOrder(ctx context.Context, target *todo.Todo, newOrder int) error
}
