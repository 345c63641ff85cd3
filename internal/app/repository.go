package app

import (
	"context"
	"fmt"
	"time"
	"todoList/internal/config"
	"todoList/internal/logger"
	rep "todoList/internal/repository"
	"todoList/internal/repository/todo/inmemory"
	"todoList/internal/repository/todo/mongo"
	"todoList/internal/repository/todo/postgres"
	"todoList/internal/service"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const attemptTimeout = 5 * time.Second

type storage interface {
	service.TodoRepository
	Close()
}

// newRepository выбирает хранилище по repository.type и ждёт его доступности
// не дольше repository.connect_timeout
func newRepository(ctx context.Context, cfg *config.Config) (storage, error) {
	switch cfg.Repository.Type {
	case config.RepositoryInMemory:
		logger.Info("App: Используется хранилище в памяти")
		return inmemory.NewTodoStorage(), nil

	case config.RepositoryMongo:
		return connect(ctx, cfg.Repository.ConnectTimeout, cfg.Repository.Type,
			func(ctx context.Context) (storage, error) {
				return mongo.New(ctx, cfg.Mongo)
			})

	case config.RepositoryPostgres:
		repo, err := connect(ctx, cfg.Repository.ConnectTimeout, cfg.Repository.Type,
			func(ctx context.Context) (storage, error) {
				return postgres.New(ctx, cfg.Database)
			})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("%w: %q", rep.ErrUnknownType, cfg.Repository.Type)
	}
}

func connect(ctx context.Context, timeout time.Duration, name string, dial func(context.Context) (storage, error)) (storage, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = timeout

	attempt := 0
	repo, err := backoff.RetryNotifyWithData(func() (storage, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()
		return dial(attemptCtx)
	}, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		logger.Warn("App: Хранилище недоступно, повтор подключения",
			zap.String("repository", name),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", next),
			zap.Error(err))
	})
	if err != nil {
		return nil, fmt.Errorf("подключение к хранилищу %s: %w", name, err)
	}
	return repo, nil
}
