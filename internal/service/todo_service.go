package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoList/internal/logger"
	"todoList/internal/models/todo"
	rep "todoList/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TodoService struct {
	repo          TodoRepository
	atomicReorder bool
	now           func() time.Time
}

type Option func(*TodoService)

// WithAtomicReorder включает обмен order через OrderSwapper, если хранилище его умеет
func WithAtomicReorder(enabled bool) Option {
	return func(s *TodoService) {
		s.atomicReorder = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TodoService) {
		s.now = now
	}
}

func NewTodoService(repo TodoRepository, opts ...Option) *TodoService {
	s := &TodoService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.atomicReorder {
		if _, ok := repo.(OrderSwapper); !ok {
			logger.Warn("Service: Хранилище не поддерживает атомарный обмен, используется обычный")
		}
	}
	return s
}

func (s *TodoService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// CreateTodo ставит новую запись над текущей максимальной
func (s *TodoService) CreateTodo(ctx context.Context, value string) (*todo.Todo, error) {
	order := 1

	top, err := s.repo.GetTopByOrder(ctx)
	switch {
	case err == nil:
		order = top.Order + 1
	case errors.Is(err, rep.ErrNotFound):
	default:
		return nil, fmt.Errorf("получение максимального order: %w", err)
	}

	item := &todo.Todo{
		Value: value,
		Order: order,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("создание записи: %w", err)
	}

	logger.Info("Service: Запись создана",
		zap.String("todo_id", item.ID),
		zap.Int("order", item.Order))
	return item, nil
}

func (s *TodoService) GetTodos(ctx context.Context) ([]*todo.Todo, error) {
	todos, err := s.repo.GetAllSorted(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение записей: %w", err)
	}
	return todos, nil
}

func (s *TodoService) GetTodoByID(ctx context.Context, id string) (*todo.Todo, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Запись не найдена", zap.String("target_id", id))
			return nil, NewNotFound(id)
		}
		return nil, fmt.Errorf("получение записи: %w", err)
	}
	return item, nil
}

// UpdateTodo применяет заполненные поля patch. Длина value здесь не проверяется.
func (s *TodoService) UpdateTodo(ctx context.Context, id string, patch todo.Patch) error {
	current, err := s.GetTodoByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.Order != nil && *patch.Order != 0 {
		if err := s.reorder(ctx, current, *patch.Order); err != nil {
			return err
		}
	}

	options := make([]todo.TodoOption, 0, 2)
	if patch.Done != nil {
		options = append(options, todo.WithDone(*patch.Done, s.now()))
	}
	if patch.Value != nil {
		options = append(options, todo.WithValue(*patch.Value))
	}
	todo.Apply(current, options...)

	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(id)
		}
		return fmt.Errorf("обновление записи: %w", err)
	}
	return nil
}

// reorder отдаёт текущий order цели записи, которая занимает newOrder.
// Без atomicReorder это два независимых запроса, гонка между ними возможна.
func (s *TodoService) reorder(ctx context.Context, current *todo.Todo, newOrder int) error {
	if s.atomicReorder {
		if swapper, ok := s.repo.(OrderSwapper); ok {
			if err := swapper.SwapOrder(ctx, current, newOrder); err != nil {
				if errors.Is(err, rep.ErrNotFound) {
					return NewNotFound(current.ID)
				}
				return fmt.Errorf("обмен order: %w", err)
			}
			return nil
		}
	}

	other, err := s.repo.GetByOrder(ctx, newOrder)
	switch {
	case err == nil:
		if other.ID != current.ID {
			other.Order = current.Order
			if err := s.repo.Update(ctx, other); err != nil {
				return fmt.Errorf("обновление соседней записи: %w", err)
			}
			logger.Info("Service: Порядок обменян",
				zap.String("todo_id", current.ID),
				zap.String("swapped_with", other.ID),
				zap.Int("order", newOrder))
		}
	case errors.Is(err, rep.ErrNotFound):
	default:
		return fmt.Errorf("поиск записи по order: %w", err)
	}

	todo.Apply(current, todo.WithOrder(newOrder))
	return nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id string) error {
	if _, err := s.GetTodoByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(id)
		}
		return fmt.Errorf("удаление записи: %w", err)
	}

	logger.Info("Service: Запись удалена", zap.String("todo_id", id))
	return nil
}
