// Package auth реализует регистрацию, вход и разрешение контекста
// аутентифицированного пользователя по JWT токену.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/lib/jwt"
	"github.com/kovalevadr/course-platform/internal/lib/password"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
	"github.com/kovalevadr/course-platform/internal/models"
)

// UserRepository определяет методы хранилища для работы с пользователями.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateLastLogin отмечает вход пользователя текущим временем.
	UpdateLastLogin(ctx context.Context, userUID string) error
}

// AuthService реализует бизнес-логику аутентификации.
type AuthService struct {
	repo     UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр AuthService.
func New(repo UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register регистрирует нового пользователя и возвращает его UID.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegisterUser) (string, error) {
	passwordHash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	uid, err := s.repo.RegisterUser(ctx, models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		City:         req.City,
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}
	return uid, nil
}

// Login проверяет пароль, отмечает вход и возвращает JWT токен.
func (s *AuthService) Login(ctx context.Context, email, pass string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return "", fmt.Errorf("user account is inactive")
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", err)
	}

	token, err := s.jwtMaker.GenerateToken(user.Email, user.Role, user.UID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.UID); err != nil {
		s.log.Error("failed to update last login", sl.Err(err))
	}
	return token, nil
}

// ResolveActor проверяет токен, читает актуальное состояние пользователя
// и собирает контекст для политики доступа. Флаг модератора разрешается
// здесь один раз на запрос.
func (s *AuthService) ResolveActor(ctx context.Context, token string) (*models.User, authz.Actor, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, authz.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	user, err := s.repo.GetUser(ctx, claims.UserUID)
	if err != nil {
		return nil, authz.Actor{}, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, authz.Actor{}, fmt.Errorf("user account is inactive")
	}

	actor := authz.Actor{
		UID:         user.UID,
		IsModerator: user.Role == models.RoleModerator,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
	return user, actor, nil
}
