// Package models содержит доменные структуры платформы онлайн-курсов,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователя. Модератор — это право, выдаваемое через членство
// в группе, а не признак владения материалами.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// User представляет зарегистрированного пользователя системы.
// Идентификация ведётся по email, а не по username.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (уникальная)
	PasswordHash string     // Хэш пароля пользователя
	FirstName    string     // Имя
	LastName     string     // Фамилия
	Phone        string     // Номер телефона
	City         string     // Город
	Avatar       string     // Ссылка на аватар
	Role         string     // Роль: user или moderator
	IsStaff      bool       // Признак администратора (персонал)
	IsSuperuser  bool       // Признак суперпользователя
	IsActive     bool       // Активна ли учётная запись
	LastLogin    *time.Time // Дата последнего входа, nil если не входил
	CreatedAt    time.Time  // Дата создания учётной записи
}

// IsAdmin сообщает, обладает ли пользователь административными правами.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// DummyRegisterUser используется для приёма данных регистрации из JSON-запроса.
type DummyRegisterUser struct {
	Email     string `json:"email" validate:"required,email"` // Электронная почта
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty"`
	LastName  string `json:"last_name" validate:"omitempty"`
	Phone     string `json:"phone" validate:"omitempty"`
	City      string `json:"city" validate:"omitempty"`
}

// DummyUpdateUser используется для приёма данных обновления профиля.
type DummyUpdateUser struct {
	FirstName string `json:"first_name" validate:"omitempty"`
	LastName  string `json:"last_name" validate:"omitempty"`
	Phone     string `json:"phone" validate:"omitempty"`
	City      string `json:"city" validate:"omitempty"`
	Avatar    string `json:"avatar" validate:"omitempty,url"`
}

// UserDetail — полная проекция профиля. Доступна самому пользователю
// и администраторам, включает историю платежей.
type UserDetail struct {
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	City      string     `json:"city"`
	Avatar    string     `json:"avatar"`
	Payments  []*Payment `json:"payments"`
}

// UserPublic — сокращённая проекция профиля для остальных
// аутентифицированных пользователей.
type UserPublic struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	City      string `json:"city"`
	Avatar    string `json:"avatar"`
}

// DetailProjection строит полную проекцию пользователя.
func (u *User) DetailProjection(payments []*Payment) *UserDetail {
	return &UserDetail{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		City:      u.City,
		Avatar:    u.Avatar,
		Payments:  payments,
	}
}

// PublicProjection строит публичную проекцию пользователя.
func (u *User) PublicProjection() *UserPublic {
	return &UserPublic{
		Email:     u.Email,
		FirstName: u.FirstName,
		City:      u.City,
		Avatar:    u.Avatar,
	}
}
