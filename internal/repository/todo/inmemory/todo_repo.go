package inmemory

import (
	"context"
	"sort"
	"sync"
	"todoList/internal/logger"
	"todoList/internal/models/todo"
	repo "todoList/internal/repository"

	"github.com/google/uuid"
)

// TodoStorage хранит копии записей, чтобы изменения снаружи
// не попадали в хранилище без Update.
type TodoStorage struct {
	storage map[string]*todo.Todo
	mtx     *sync.RWMutex
	ids     []string
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[string]*todo.Todo),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TodoStorage) Close() {
	logger.Info("Repository: Хранилище в памяти закрыто")
}

func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	todoToCreate.ID = uuid.New().String()
	s.storage[todoToCreate.ID] = clone(todoToCreate)
	s.ids = append(s.ids, todoToCreate.ID)
	return nil
}

func (s *TodoStorage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[todoToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}
	s.storage[todoToUpdate.ID] = clone(todoToUpdate)
	return nil
}

func (s *TodoStorage) GetByID(ctx context.Context, id string) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	todoToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(todoToGet), nil
}

func (s *TodoStorage) GetByOrder(ctx context.Context, order int) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, id := range s.ids {
		if t := s.storage[id]; t.Order == order {
			return clone(t), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *TodoStorage) GetTopByOrder(ctx context.Context) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var top *todo.Todo
	for _, id := range s.ids {
		t := s.storage[id]
		if top == nil || t.Order > top.Order {
			top = t
		}
	}
	if top == nil {
		return nil, repo.ErrNotFound
	}
	return clone(top), nil
}

// GetAllSorted - все записи по убыванию order
func (s *TodoStorage) GetAllSorted(ctx context.Context) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*todo.Todo, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, clone(s.storage[id]))
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Order > res[j].Order
	})
	return res, nil
}

func (s *TodoStorage) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// SwapOrder под одной блокировкой отдаёт order цели владельцу newOrder
// и назначает цели newOrder.
func (s *TodoStorage) SwapOrder(ctx context.Context, target *todo.Todo, newOrder int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current, ok := s.storage[target.ID]
	if !ok {
		return repo.ErrNotFound
	}

	for _, id := range s.ids {
		if other := s.storage[id]; id != target.ID && other.Order == newOrder {
			other.Order = current.Order
			break
		}
	}

	current.Order = newOrder
	target.Order = newOrder
	return nil
}

func clone(t *todo.Todo) *todo.Todo {
	c := *t
	if t.DoneAt != nil {
		doneAt := *t.DoneAt
		c.DoneAt = &doneAt
	}
	return &c
}
