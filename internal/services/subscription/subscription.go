// Package subscription реализует переключение подписки пользователя на курс.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
)

// SubscriptionRepository определяет методы хранилища для работы с подписками.
type SubscriptionRepository interface {
	// ToggleSubscription переключает подписку и возвращает итоговое состояние.
	ToggleSubscription(ctx context.Context, userUID string, courseID int) (string, error)
	// GetCourse возвращает курс по ID. Используется для проверки существования.
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
}

// SubscriptionService реализует бизнес-логику подписок на обновления курсов.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

// New создает новый экземпляр SubscriptionService.
func New(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo: repo,
		log:  log,
	}
}

// Toggle переключает подписку инициатора на курс и возвращает итоговое
// состояние: "subscribed" либо "unsubscribed". Подписка доступна любому
// аутентифицированному пользователю, подписываться можно только за себя.
func (s *SubscriptionService) Toggle(ctx context.Context, actor authz.Actor, courseID int) (string, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return "", fmt.Errorf("failed to find course: %w", err)
	}

	message, err := s.repo.ToggleSubscription(ctx, actor.UID, courseID)
	if err != nil {
		return "", fmt.Errorf("failed to toggle subscription: %w", err)
	}

	s.log.Info("subscription toggled",
		slog.String("user_uid", actor.UID),
		slog.Int("course_id", courseID),
		slog.String("result", message))
	return message, nil
}
