// Package sender обрабатывает события об изменении курсов: проверяет
// актуальность задачи уведомления и рассылает письма подписчикам.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/lib/rabbitmq"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
	"github.com/kovalevadr/course-platform/internal/lib/smtp"
	"github.com/kovalevadr/course-platform/internal/models"
)

// NotificationRepository определяет методы хранилища для рассылки.
type NotificationRepository interface {
	// GetCourse возвращает курс по ID.
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
	// ListSubscriberEmails возвращает адреса активных подписчиков курса.
	ListSubscriberEmails(ctx context.Context, courseID int) ([]string, error)
	// ClearNotificationTaskID снимает с курса задачу уведомления.
	ClearNotificationTaskID(ctx context.Context, courseID int) error
}

// Publisher публикует событие в очередь повторов.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// SenderService рассылает подписчикам письма об обновлении курса.
type SenderService struct {
	repo         NotificationRepository
	transport    smtp.TransportInterface
	publisher    Publisher
	minCourseAge time.Duration
	log          *slog.Logger
}

// New создает новый экземпляр SenderService.
func New(repo NotificationRepository, transport smtp.TransportInterface, publisher Publisher,
	minCourseAge time.Duration, log *slog.Logger) *SenderService {
	return &SenderService{
		repo:         repo,
		transport:    transport,
		publisher:    publisher,
		minCourseAge: minCourseAge,
		log:          log,
	}
}

// HandleCourseUpdated обрабатывает событие об изменении курса.
//
// Свежеобновлённый курс уходит в очередь повторов: пока материалы правят,
// письмо не отправляется, а быстрые правки схлопываются в одну задачу.
// Устаревшие события (курс удалён либо задача уже не актуальна)
// подтверждаются без отправки. Задача снимается с курса всегда, даже если
// подписчиков не оказалось; сбой почтового транспорта откладывает рассылку
// через очередь повторов, не снимая задачу.
func (s *SenderService) HandleCourseUpdated(body []byte) error {
	ctx := context.Background()

	var event models.CourseUpdatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal course updated event", sl.Err(err))
		// Битое сообщение не станет лучше после requeue
		return nil
	}
	log := s.log.With(slog.Int("course_id", event.CourseID), slog.String("task_id", event.TaskID))

	course, err := s.repo.GetCourse(ctx, event.CourseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("course deleted before notification, dropping event")
			return nil
		}
		log.Error("failed to load course", sl.Err(err))
		return err
	}
	if course.NotificationTaskID == nil || *course.NotificationTaskID != event.TaskID {
		log.Info("notification task is stale, dropping event")
		return nil
	}

	if age := time.Since(course.UpdatedAt); age < s.minCourseAge {
		log.Info("course updated recently, deferring notification", slog.Duration("age", age))
		return s.requeue(event)
	}

	emails, err := s.repo.ListSubscriberEmails(ctx, event.CourseID)
	if err != nil {
		log.Error("failed to list subscribers", sl.Err(err))
		return err
	}

	for _, email := range emails {
		if err := s.sendEmail(email, course.Name); err != nil {
			log.Error("failed to send email, deferring notification", sl.Err(err))
			return s.requeue(event)
		}
	}

	if err := s.repo.ClearNotificationTaskID(ctx, event.CourseID); err != nil {
		log.Error("failed to clear notification task", sl.Err(err))
		return err
	}
	log.Info("course update notification sent", slog.Int("recipients", len(emails)))
	return nil
}

func (s *SenderService) requeue(event models.CourseUpdatedEvent) error {
	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, rabbitmq.RetryKey, event); err != nil {
		return fmt.Errorf("failed to requeue event: %w", err)
	}
	return nil
}

func (s *SenderService) sendEmail(to, courseName string) error {
	subject := "Обновление материалов курса"
	bodyText := fmt.Sprintf("Здравствуйте!\n\nМатериалы курса «%s» были обновлены.\n\nЗагляните на платформу, чтобы посмотреть изменения.", courseName)

	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set RCPT TO: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}
	return nil
}
