// Package courseplatform собирает основное HTTP-приложение платформы:
// хранилище, кэш, брокер уведомлений, внешние клиенты и маршруты.
package courseplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/kovalevadr/course-platform/internal/cache"
	"github.com/kovalevadr/course-platform/internal/config"
	"github.com/kovalevadr/course-platform/internal/currency"
	"github.com/kovalevadr/course-platform/internal/lib/jwt"
	"github.com/kovalevadr/course-platform/internal/lib/rabbitmq"
	"github.com/kovalevadr/course-platform/internal/migrations"
	authservice "github.com/kovalevadr/course-platform/internal/services/auth"
	courseservice "github.com/kovalevadr/course-platform/internal/services/course"
	lessonservice "github.com/kovalevadr/course-platform/internal/services/lesson"
	"github.com/kovalevadr/course-platform/internal/services/notify"
	paymentservice "github.com/kovalevadr/course-platform/internal/services/payment"
	subscriptionservice "github.com/kovalevadr/course-platform/internal/services/subscription"
	userservice "github.com/kovalevadr/course-platform/internal/services/user"
	"github.com/kovalevadr/course-platform/internal/storage/repository"
	"github.com/kovalevadr/course-platform/internal/stripeapi"
)

// App объединяет HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает приложение: подключает зависимости, прогоняет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Notifications.RetryDelay)
	if err != nil {
		conn.Close()
		return nil, err
	}

	scheduler := notify.NewScheduler(db, notify.NewChannelPublisher(ch), logger)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.New(db, jwtMaker, logger)

	ratesClient := currency.NewClient(cfg.RatesAPIURL, cacheRedis, cfg.RateCacheTTL, cfg.Currency.ClientTimeout)
	providerClient := stripeapi.NewClient(cfg.StripeAPIKey, cfg.Payments.ClientTimeout)

	courseService := courseservice.New(db, cacheRedis, scheduler, logger)
	lessonService := lessonservice.New(db, scheduler, logger)
	subscriptionService := subscriptionservice.New(db, logger)
	userService := userservice.New(db, logger)
	paymentService := paymentservice.New(db, ratesClient, providerClient, paymentservice.Options{
		LocalCurrency:      cfg.LocalCurrency,
		SettlementCurrency: cfg.SettlementCurrency,
		SuccessURL:         cfg.SuccessURL,
		ProductLabel:       cfg.ProductLabel,
	}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		DB:           db,
		Auth:         authService,
		Course:       courseService,
		Lesson:       lessonService,
		Subscription: subscriptionService,
		User:         userService,
		Payment:      paymentService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до остановки контекста
// или фатальной ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		a.db.DB.Close()
		return err
	}
}
