// Package sweeper собирает фоновый процесс блокировки пользователей,
// не заходивших на платформу дольше заданного срока.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/kovalevadr/course-platform/internal/config"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
	userservice "github.com/kovalevadr/course-platform/internal/services/user"
	"github.com/kovalevadr/course-platform/internal/storage/repository"
)

// App периодически запускает блокировку неактивных пользователей.
type App struct {
	db            *repository.Storage
	userService   *userservice.UserService
	inactiveAfter time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
}

// New собирает процесс блокировки неактивных пользователей.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	return &App{
		db:            db,
		userService:   userservice.New(db, logger),
		inactiveAfter: cfg.Sweeper.InactiveAfter,
		sweepInterval: cfg.Sweeper.SweepInterval,
		logger:        logger,
	}, nil
}

// Run запускает цикл блокировки и блокируется до остановки контекста.
// Первый проход выполняется сразу при старте, далее — по расписанию.
func (a *App) Run(ctx context.Context) error {
	a.sweep(ctx)

	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.sweep(ctx)
		case <-ctx.Done():
			a.logger.Info("user sweeper shutting down gracefully")
			a.db.DB.Close()
			return nil
		}
	}
}

func (a *App) sweep(ctx context.Context) {
	count, err := a.userService.SweepInactive(ctx, a.inactiveAfter)
	if err != nil {
		a.logger.Error("failed to sweep inactive users", sl.Err(err))
		return
	}
	a.logger.Info("inactive users blocked", slog.Int("count", count))
}
