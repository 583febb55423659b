// Package notify планирует уведомления подписчиков об изменении курса.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/kovalevadr/course-platform/internal/lib/rabbitmq"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
	"github.com/kovalevadr/course-platform/internal/models"
)

// TaskRepository определяет методы хранилища для задач уведомлений.
type TaskRepository interface {
	// SetNotificationTaskID закрепляет задачу за курсом, если её ещё нет.
	SetNotificationTaskID(ctx context.Context, courseID int, taskID string) (bool, error)
}

// Publisher публикует событие в очередь уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// ChannelPublisher — издатель поверх канала RabbitMQ.
type ChannelPublisher struct {
	ch *amqp.Channel
}

// NewChannelPublisher создает издателя поверх канала RabbitMQ.
func NewChannelPublisher(ch *amqp.Channel) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish публикует сообщение в обменник.
func (p *ChannelPublisher) Publish(exchange, routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.ch, exchange, routingKey, message)
}

// Scheduler ставит в очередь уведомление об изменении курса. За курсом
// держится не больше одной невыполненной задачи: повторные изменения
// до отправки письма схлопываются в неё.
type Scheduler struct {
	repo      TaskRepository
	publisher Publisher
	log       *slog.Logger
}

// NewScheduler создает новый экземпляр Scheduler.
func NewScheduler(repo TaskRepository, publisher Publisher, log *slog.Logger) *Scheduler {
	return &Scheduler{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ScheduleCourseUpdate закрепляет за курсом задачу уведомления и публикует
// событие. Если задача уже висит, новое событие не публикуется. Ошибка
// планирования не прерывает мутацию материалов: она логируется, а не
// возвращается наружу.
func (s *Scheduler) ScheduleCourseUpdate(ctx context.Context, courseID int) {
	taskID := uuid.New().String()
	claimed, err := s.repo.SetNotificationTaskID(ctx, courseID, taskID)
	if err != nil {
		s.log.Error("failed to claim notification task", slog.Int("course_id", courseID), sl.Err(err))
		return
	}
	if !claimed {
		return
	}

	event := models.CourseUpdatedEvent{CourseID: courseID, TaskID: taskID}
	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, rabbitmq.CourseUpdatedKey, event); err != nil {
		s.log.Error("failed to publish course updated event",
			slog.Int("course_id", courseID), sl.Err(err))
		return
	}
	s.log.Info("scheduled course update notification",
		slog.Int("course_id", courseID), slog.String("task_id", taskID))
}

var _ Publisher = (*ChannelPublisher)(nil)
