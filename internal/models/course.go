package models

import "time"

// Course представляет курс — именованный набор уроков.
// OwnerUID равен nil, если владелец удалён (ссылка зануляется, не каскадится).
type Course struct {
	ID                 int        // Идентификатор курса
	Name               string     // Название курса
	Description        string     // Описание
	Preview            string     // Ссылка на превью-картинку
	OwnerUID           *string    // UID владельца, nil если владелец удалён
	UpdatedAt          time.Time  // Дата последнего изменения материалов курса
	NotificationTaskID *string    // ID невыполненной задачи уведомления, nil если её нет
	CreatedAt          time.Time  // Дата создания
}

// CourseInfo — курс, обогащённый данными для выдачи: количество уроков,
// сами уроки и признак подписки просматривающего пользователя.
// IsSubscribed вычисляется на каждый запрос, а не хранится.
type CourseInfo struct {
	Course
	CountLessons int       `json:"count_lessons"`
	Lessons      []*Lesson `json:"lessons"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// DummyCourse используется для приёма данных курса из JSON-запроса.
type DummyCourse struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty"`
	Preview     string `json:"preview" validate:"omitempty,url"`
}

// CourseUpdatedEvent — событие об изменении материалов курса,
// публикуемое в очередь уведомлений после каждой мутации.
type CourseUpdatedEvent struct {
	CourseID int    `json:"course_id"`
	TaskID   string `json:"task_id"`
}
