package worker

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"
	"todoList/internal/logger"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

const (
	defaultInterval = 30 * time.Second
	checkTimeout    = 5 * time.Second
)

type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Status - снимок последней проверки
type Status struct {
	Healthy        bool
	Error          string
	CheckedAt      time.Time
	PID            int32
	RSSBytes       uint64
	Goroutines     int
	MemUsedPercent float64
	MemTotalBytes  uint64
}

type HealthWorker struct {
	checker  Checker
	interval time.Duration

	mtx  sync.RWMutex
	last Status
}

func NewHealthWorker(checker Checker, interval *time.Duration) *HealthWorker {
	intervalToSet := defaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}

	return &HealthWorker{
		checker:  checker,
		interval: intervalToSet,
	}
}

// Start делает первую проверку сразу и дальше по тикеру до отмены ctx
func (w *HealthWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновая проверка хранилища запущена", zap.Duration("interval", w.interval))
	w.Check(ctx)

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *HealthWorker) Check(ctx context.Context) Status {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status := Status{
		Healthy:    true,
		CheckedAt:  start,
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
	}

	if err := w.checker.HealthCheck(checkCtx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
		logger.Warn("Worker: Хранилище недоступно", zap.Error(err))
	}

	w.collectStats(checkCtx, &status)

	w.mtx.Lock()
	w.last = status
	w.mtx.Unlock()

	logger.Log(zap.DebugLevel, "Worker: Проверка завершена",
		zap.Bool("healthy", status.Healthy),
		zap.Duration("ms", time.Since(start)))
	return status
}

func (w *HealthWorker) Status() Status {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	return w.last
}

// collectStats не влияет на Healthy: ошибки gopsutil только логируются
func (w *HealthWorker) collectStats(ctx context.Context, status *Status) {
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status.MemUsedPercent = vm.UsedPercent
		status.MemTotalBytes = vm.Total
	} else {
		logger.Log(zap.DebugLevel, "Worker: Нет данных о памяти хоста", zap.Error(err))
	}

	proc, err := process.NewProcessWithContext(ctx, status.PID)
	if err != nil {
		logger.Log(zap.DebugLevel, "Worker: Нет данных о процессе", zap.Error(err))
		return
	}
	if info, err := proc.MemoryInfoWithContext(ctx); err == nil {
		status.RSSBytes = info.RSS
	}
}
