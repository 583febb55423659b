// Package course реализует бизнес-логику работы с курсами: CRUD за
// политикой доступа, кеширование чтений и планирование уведомлений.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
	"github.com/kovalevadr/course-platform/internal/models"
)

// CourseRepository определяет методы хранилища для работы с курсами.
type CourseRepository interface {
	// CreateCourse сохраняет новый курс и возвращает его ID.
	CreateCourse(ctx context.Context, req models.DummyCourse, ownerUID string) (int, error)
	// GetCourse возвращает курс по ID.
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
	// GetCourseInfo возвращает курс с уроками и признаком подписки.
	GetCourseInfo(ctx context.Context, courseID int, viewerUID string) (*models.CourseInfo, error)
	// ListCourses возвращает страницу обогащённых курсов.
	ListCourses(ctx context.Context, viewerUID string, limit, offset int) ([]*models.CourseInfo, error)
	// UpdateCourse обновляет поля курса и возвращает количество изменённых строк.
	UpdateCourse(ctx context.Context, courseID int, req models.DummyCourse) (int, error)
	// RemoveCourse удаляет курс и возвращает количество удалённых строк.
	RemoveCourse(ctx context.Context, courseID int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	InvalidateByPrefix(prefix string) error
}

// Notifier планирует уведомление подписчиков об изменении курса.
type Notifier interface {
	ScheduleCourseUpdate(ctx context.Context, courseID int)
}

// CourseService реализует бизнес-логику работы с курсами.
type CourseService struct {
	repo     CourseRepository
	cache    Cache
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр CourseService.
func New(repo CourseRepository, cache Cache, notifier Notifier, log *slog.Logger) *CourseService {
	return &CourseService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

// Ключ различается читателем: в CourseInfo входит его признак подписки.
func cacheKey(courseID int, viewerUID string) string {
	return cachePrefix(courseID) + viewerUID
}

// Префикс объединяет все закешированные копии одного курса.
func cachePrefix(courseID int) string {
	return fmt.Sprintf("course:%d:", courseID)
}

// Create создает новый курс от имени инициатора и возвращает его ID.
func (s *CourseService) Create(ctx context.Context, actor authz.Actor, req models.DummyCourse) (int, error) {
	if decision := authz.Decide(actor, authz.CourseCreate, nil); !decision.Allowed {
		return 0, apperr.Permission(decision.Reason)
	}

	id, err := s.repo.CreateCourse(ctx, req, actor.UID)
	if err != nil {
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return id, nil
}

// List возвращает страницу курсов, обогащённых для инициатора.
// Листинг доступен всем аутентифицированным пользователям.
func (s *CourseService) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.CourseInfo, error) {
	courses, err := s.repo.ListCourses(ctx, actor.UID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Read возвращает курс с уроками. Чтение чужого курса доступно модератору.
func (s *CourseService) Read(ctx context.Context, actor authz.Actor, courseID int) (*models.CourseInfo, error) {
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to read course: %w", err)
	}
	if decision := authz.Decide(actor, authz.CourseRead, &authz.Resource{OwnerUID: course.OwnerUID}); !decision.Allowed {
		return nil, apperr.Permission(decision.Reason)
	}

	key := cacheKey(courseID, actor.UID)
	var cached models.CourseInfo
	if found, err := s.cache.Get(key, &cached); err == nil && found {
		return &cached, nil
	}

	info, err := s.repo.GetCourseInfo(ctx, courseID, actor.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to read course info: %w", err)
	}
	if err := s.cache.Set(key, info, time.Minute); err != nil {
		s.log.Warn("failed to cache course", sl.Err(err))
	}
	return info, nil
}

// Update обновляет курс и планирует уведомление подписчиков.
func (s *CourseService) Update(ctx context.Context, actor authz.Actor, courseID int, req models.DummyCourse) error {
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to read course: %w", err)
	}
	if decision := authz.Decide(actor, authz.CourseUpdate, &authz.Resource{OwnerUID: course.OwnerUID}); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	updated, err := s.repo.UpdateCourse(ctx, courseID, req)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("failed to update course: %w", apperr.ErrNotFound)
	}

	// Сбрасываются копии курса всех читателей, не только инициатора.
	if err := s.cache.InvalidateByPrefix(cachePrefix(courseID)); err != nil {
		s.log.Warn("failed to invalidate course cache", sl.Err(err))
	}
	s.notifier.ScheduleCourseUpdate(ctx, courseID)
	return nil
}

// Remove удаляет курс вместе с уроками и подписками.
func (s *CourseService) Remove(ctx context.Context, actor authz.Actor, courseID int) error {
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to read course: %w", err)
	}
	if decision := authz.Decide(actor, authz.CourseDelete, &authz.Resource{OwnerUID: course.OwnerUID}); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	removed, err := s.repo.RemoveCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to remove course: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("failed to remove course: %w", apperr.ErrNotFound)
	}

	if err := s.cache.InvalidateByPrefix(cachePrefix(courseID)); err != nil {
		s.log.Warn("failed to invalidate course cache", sl.Err(err))
	}
	return nil
}
