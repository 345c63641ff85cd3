package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoList/internal/config"
	"todoList/internal/logger"
	"todoList/internal/models/todo"
	repo "todoList/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const selectColumns = `SELECT id::text, value, "order", done_at FROM todos`

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()
	id := uuid.New()

	query := `INSERT INTO todos (id, value, "order", done_at)
				VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, id, todoToCreate.Value, todoToCreate.Order, todoToCreate.DoneAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить запись", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление записи: %w", err)
	}

	todoToCreate.ID = id.String()
	warnIfSlow(start)
	return nil
}

func (s *Storage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	start := time.Now()

	id, err := uuid.Parse(todoToUpdate.ID)
	if err != nil {
		return repo.ErrNotFound
	}

	query := `UPDATE todos
			SET value = $1,
				"order" = $2,
				done_at = $3,
				updated_at = NOW()
			WHERE id = $4`

	tag, err := s.pool.Exec(ctx, query, todoToUpdate.Value, todoToUpdate.Order, todoToUpdate.DoneAt, id)
	if err != nil {
		logger.Error("Repository: Не удалось обновить запись", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление записи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*todo.Todo, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo.ErrNotFound
	}
	return s.getOne(ctx, selectColumns+` WHERE id = $1`, parsed)
}

func (s *Storage) GetByOrder(ctx context.Context, order int) (*todo.Todo, error) {
	return s.getOne(ctx, selectColumns+` WHERE "order" = $1 LIMIT 1`, order)
}

func (s *Storage) GetTopByOrder(ctx context.Context) (*todo.Todo, error) {
	return s.getOne(ctx, selectColumns+` ORDER BY "order" DESC LIMIT 1`)
}

func (s *Storage) GetAllSorted(ctx context.Context) ([]*todo.Todo, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, selectColumns+` ORDER BY "order" DESC`)
	if err != nil {
		logger.Error("Repository: Не удалось получить записи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записей: %w", err)
	}
	defer rows.Close()

	todos := []*todo.Todo{}
	for rows.Next() {
		item := &todo.Todo{}
		if err := rows.Scan(&item.ID, &item.Value, &item.Order, &item.DoneAt); err != nil {
			logger.Error("Repository: Ошибка сканирования записи", err)
			return nil, fmt.Errorf("сканирование записи: %w", err)
		}
		todos = append(todos, item)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start)
	return todos, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	start := time.Now()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, parsed)
	if err != nil {
		logger.Error("Repository: Не удалось удалить запись", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление записи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start)
	return nil
}

// SwapOrder меняет order цели и текущего владельца newOrder в одной транзакции
func (s *Storage) SwapOrder(ctx context.Context, target *todo.Todo, newOrder int) error {
	id, err := uuid.Parse(target.ID)
	if err != nil {
		return repo.ErrNotFound
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT "order" FROM todos WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repo.ErrNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE todos SET "order" = $1, updated_at = NOW()
				WHERE id = (SELECT id FROM todos WHERE "order" = $2 AND id <> $3 LIMIT 1 FOR UPDATE)`,
			current, newOrder, id)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE todos SET "order" = $1, updated_at = NOW() WHERE id = $2`, newOrder, id)
		return err
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return err
		}
		logger.Error("Repository: Не удалось поменять порядок", err)
		return fmt.Errorf("обмен порядка: %w", err)
	}

	target.Order = newOrder
	return nil
}

func (s *Storage) getOne(ctx context.Context, query string, args ...any) (*todo.Todo, error) {
	start := time.Now()

	item := &todo.Todo{}
	err := s.pool.QueryRow(ctx, query, args...).Scan(&item.ID, &item.Value, &item.Order, &item.DoneAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить запись", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записи: %w", err)
	}

	warnIfSlow(start)
	return item, nil
}

func warnIfSlow(start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
}
