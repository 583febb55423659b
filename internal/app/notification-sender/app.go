// Package notificationsender собирает консьюмер очереди уведомлений:
// он читает события об обновлении курсов и рассылает письма подписчикам.
package notificationsender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/kovalevadr/course-platform/internal/config"
	"github.com/kovalevadr/course-platform/internal/lib/rabbitmq"
	"github.com/kovalevadr/course-platform/internal/lib/smtp"
	"github.com/kovalevadr/course-platform/internal/services/notify"
	senderservice "github.com/kovalevadr/course-platform/internal/services/sender"
	"github.com/kovalevadr/course-platform/internal/storage/repository"
)

// App объединяет подключение к брокеру и сервис рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	db            *repository.Storage
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New собирает консьюмер: хранилище, брокер, почтовый транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
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

	transport := smtp.NewTransport(cfg, logger)
	publisher := notify.NewChannelPublisher(ch)
	senderService := senderservice.New(db, transport, publisher, cfg.Notifications.MinCourseAge, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		db:            db,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает консьюмер очереди обновлений курсов и блокируется
// до остановки контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.CourseUpdatedQueue, a.senderService.HandleCourseUpdated)
	if err != nil {
		a.logger.Error("failed to start course updates consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	a.db.DB.Close()

	return nil
}
