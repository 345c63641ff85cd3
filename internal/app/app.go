package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"todoList/internal/config"
	"todoList/internal/handlers"
	"todoList/internal/logger"
	"todoList/internal/service"
	"todoList/internal/worker"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	static    afero.Fs
	server    *http.Server
	service   *service.TodoService
	health    *worker.HealthWorker
	shutdowns []func() // функции для graceful shutdown, вызываются в обратном порядке
}

type Option func(*App)

// WithStaticFs подменяет файловую систему статики, по умолчанию это ОС
func WithStaticFs(fs afero.Fs) Option {
	return func(a *App) {
		a.static = fs
	}
}

func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config:    cfg,
		static:    afero.NewReadOnlyFs(afero.NewOsFs()),
		shutdowns: make([]func(), 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init собирает зависимости: хранилище, сервис, воркер, обработчики, роутер
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := newRepository(ctx, a.config)
	if err != nil {
		logger.Error("App: Не удалось подключить хранилище", err,
			zap.String("repository", a.config.Repository.Type))
		return err
	}
	a.shutdowns = append(a.shutdowns, repo.Close)

	a.service = service.NewTodoService(repo,
		service.WithAtomicReorder(a.config.Repository.AtomicReorder))
	a.health = worker.NewHealthWorker(a.service, &a.config.Health.Interval)

	todoHandler := handlers.NewTodoHandler(a.service, a.health)
	a.server = newServer(a.config, NewRouter(a.config, todoHandler, a.static))

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("atomic_reorder", a.config.Repository.AtomicReorder),
		zap.String("static_dir", a.config.Static.Dir))
	return nil
}

// Handler - корневой обработчик, доступен после Init
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run блокируется до SIGINT/SIGTERM или отмены ctx, затем гасит сервер и воркер
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.health.Start(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("App: Сервер остановился с ошибкой", err)
			return fmt.Errorf("запуск сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера...",
			zap.Duration("timeout", a.config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Close() {
	for _, shutdown := range slices.Backward(a.shutdowns) {
		shutdown()
	}
	a.shutdowns = nil
}
