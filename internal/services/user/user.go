// Package user реализует бизнес-логику профилей: проекции, правку,
// удаление и блокировку неактивных учётных записей.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
)

// UserRepository определяет методы хранилища для работы с профилями.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListUsers возвращает страницу пользователей.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// UpdateUserProfile обновляет редактируемые поля профиля.
	UpdateUserProfile(ctx context.Context, userUID string, req models.DummyUpdateUser) (int, error)
	// RemoveUser удаляет пользователя.
	RemoveUser(ctx context.Context, userUID string) (int, error)
	// ListPaymentsByUser возвращает платежи пользователя.
	ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error)
	// DeactivateInactiveUsers блокирует пользователей, не входивших с before.
	DeactivateInactiveUsers(ctx context.Context, before time.Time) (int, error)
}

// UserService реализует бизнес-логику работы с профилями.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый экземпляр UserService.
func New(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// Read возвращает проекцию профиля: полную с историей платежей для самого
// пользователя и администратора, публичную для остальных.
func (s *UserService) Read(ctx context.Context, actor authz.Actor, userUID string) (any, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	if !authz.CanSeeDetail(actor, userUID) {
		return user.PublicProjection(), nil
	}

	payments, err := s.repo.ListPaymentsByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return user.DetailProjection(payments), nil
}

// List возвращает страницу публичных проекций пользователей.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.UserPublic, error) {
	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	result := make([]*models.UserPublic, 0, len(users))
	for _, u := range users {
		result = append(result, u.PublicProjection())
	}
	return result, nil
}

// Update правит профиль. Доступно самому пользователю и администратору.
func (s *UserService) Update(ctx context.Context, actor authz.Actor, userUID string, req models.DummyUpdateUser) error {
	if decision := authz.Decide(actor, authz.UserUpdate, &authz.Resource{OwnerUID: &userUID}); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	updated, err := s.repo.UpdateUserProfile(ctx, userUID, req)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("failed to update user: %w", apperr.ErrNotFound)
	}
	return nil
}

// Remove удаляет учётную запись. Доступно самому пользователю
// и администратору.
func (s *UserService) Remove(ctx context.Context, actor authz.Actor, userUID string) error {
	if decision := authz.Decide(actor, authz.UserDelete, &authz.Resource{OwnerUID: &userUID}); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	removed, err := s.repo.RemoveUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("failed to remove user: %w", apperr.ErrNotFound)
	}
	return nil
}

// SweepInactive блокирует пользователей без входа дольше inactiveAfter
// и возвращает количество заблокированных.
func (s *UserService) SweepInactive(ctx context.Context, inactiveAfter time.Duration) (int, error) {
	count, err := s.repo.DeactivateInactiveUsers(ctx, time.Now().Add(-inactiveAfter))
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate users: %w", err)
	}
	if count > 0 {
		s.log.Info("deactivated inactive users", slog.Int("count", count))
	}
	return count, nil
}
