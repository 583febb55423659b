package models

import "time"

// Lesson представляет урок. Урок принадлежит не более чем одному курсу
// и удаляется каскадно вместе с ним; ссылка на владельца зануляется.
type Lesson struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Preview     string    `json:"preview"`
	Video       string    `json:"video"` // Ссылка на видео, пустая строка допустима
	CourseID    *int      `json:"course_id"`
	OwnerUID    *string   `json:"owner_uid"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// DummyLesson используется для приёма данных урока из JSON-запроса.
// Поле Video проверяется кастомным правилом videolink: пустое значение
// допустимо, непустое обязано указывать на разрешённый видеохостинг.
type DummyLesson struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty"`
	Preview     string `json:"preview" validate:"omitempty,url"`
	Video       string `json:"video" validate:"omitempty,videolink"`
	CourseID    *int   `json:"course_id" validate:"omitempty,gt=0"`
}
