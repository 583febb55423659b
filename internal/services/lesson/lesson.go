// Package lesson реализует бизнес-логику работы с уроками.
package lesson

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
)

// LessonRepository определяет методы хранилища для работы с уроками.
type LessonRepository interface {
	// CreateLesson сохраняет новый урок и возвращает его ID.
	CreateLesson(ctx context.Context, req models.DummyLesson, ownerUID string) (int, error)
	// GetLesson возвращает урок по ID.
	GetLesson(ctx context.Context, lessonID int) (*models.Lesson, error)
	// ListLessons возвращает страницу уроков.
	ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error)
	// UpdateLesson обновляет поля урока и возвращает количество изменённых строк.
	UpdateLesson(ctx context.Context, lessonID int, req models.DummyLesson) (int, error)
	// RemoveLesson удаляет урок и возвращает количество удалённых строк.
	RemoveLesson(ctx context.Context, lessonID int) (int, error)
	// GetCourse возвращает курс по ID. Используется для проверки существования.
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
}

// Notifier планирует уведомление подписчиков об изменении курса.
type Notifier interface {
	ScheduleCourseUpdate(ctx context.Context, courseID int)
}

// LessonService реализует бизнес-логику работы с уроками. Мутация урока
// считается изменением материалов его курса и планирует уведомление.
type LessonService struct {
	repo     LessonRepository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр LessonService.
func New(repo LessonRepository, notifier Notifier, log *slog.Logger) *LessonService {
	return &LessonService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Create создает новый урок от имени инициатора и возвращает его ID.
func (s *LessonService) Create(ctx context.Context, actor authz.Actor, req models.DummyLesson) (int, error) {
	if decision := authz.Decide(actor, authz.LessonCreate, nil); !decision.Allowed {
		return 0, apperr.Permission(decision.Reason)
	}
	if req.CourseID != nil {
		if _, err := s.repo.GetCourse(ctx, *req.CourseID); err != nil {
			return 0, fmt.Errorf("failed to find course: %w", err)
		}
	}

	id, err := s.repo.CreateLesson(ctx, req, actor.UID)
	if err != nil {
		return 0, fmt.Errorf("failed to create lesson: %w", err)
	}
	if req.CourseID != nil {
		s.notifier.ScheduleCourseUpdate(ctx, *req.CourseID)
	}
	return id, nil
}

// List возвращает страницу уроков.
func (s *LessonService) List(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	lessons, err := s.repo.ListLessons(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// Read возвращает урок. Чтение чужого урока доступно модератору.
func (s *LessonService) Read(ctx context.Context, actor authz.Actor, lessonID int) (*models.Lesson, error) {
	lesson, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson: %w", err)
	}
	if decision := authz.Decide(actor, authz.LessonRead, &authz.Resource{OwnerUID: lesson.OwnerUID}); !decision.Allowed {
		return nil, apperr.Permission(decision.Reason)
	}
	return lesson, nil
}

// Update обновляет урок и планирует уведомление подписчиков его курса.
func (s *LessonService) Update(ctx context.Context, actor authz.Actor, lessonID int, req models.DummyLesson) error {
	lesson, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to read lesson: %w", err)
	}
	if decision := authz.Decide(actor, authz.LessonUpdate, &authz.Resource{OwnerUID: lesson.OwnerUID}); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}
	if req.CourseID != nil {
		if _, err := s.repo.GetCourse(ctx, *req.CourseID); err != nil {
			return fmt.Errorf("failed to find course: %w", err)
		}
	}

	updated, err := s.repo.UpdateLesson(ctx, lessonID, req)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("failed to update lesson: %w", apperr.ErrNotFound)
	}

	if req.CourseID != nil {
		s.notifier.ScheduleCourseUpdate(ctx, *req.CourseID)
	} else if lesson.CourseID != nil {
		s.notifier.ScheduleCourseUpdate(ctx, *lesson.CourseID)
	}
	return nil
}

// Remove удаляет урок.
func (s *LessonService) Remove(ctx context.Context, actor authz.Actor, lessonID int) error {
	lesson, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to read lesson: %w", err)
	}
	if decision := authz.Decide(actor, authz.LessonDelete, &authz.Resource{OwnerUID: lesson.OwnerUID}); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	removed, err := s.repo.RemoveLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to remove lesson: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("failed to remove lesson: %w", apperr.ErrNotFound)
	}
	return nil
}
