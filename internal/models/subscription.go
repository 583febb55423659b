package models

// Subscription — связь пользователя и курса: существование записи
// означает «подписан». Пара (user, course) уникальна на уровне хранилища.
type Subscription struct {
	ID       int    `json:"id"`
	UserUID  string `json:"user_uid"`
	CourseID int    `json:"course_id"`
}

// Результаты переключения подписки.
const (
	ToggleSubscribed   = "subscribed"
	ToggleUnsubscribed = "unsubscribed"
)
