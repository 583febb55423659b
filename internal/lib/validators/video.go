// Package validators содержит кастомные правила для go-playground/validator.
package validators

import (
	"strings"

	"github.com/go-playground/validator"
)

// AllowedVideoHost — единственный разрешённый видеохостинг для уроков.
const AllowedVideoHost = "youtube.com"

// VideoLinkMessage — фиксированное сообщение об ошибке для пользователя.
const VideoLinkMessage = "К материалам можно добавлять только ссылки на YouTube."

// VideoLinkTag — имя правила при регистрации в валидаторе.
const VideoLinkTag = "videolink"

// VideoLink проверяет ссылку на видео: пустое значение допустимо
// (отсекается omitempty до вызова), непустое обязано содержать
// подстроку разрешённого хостинга.
func VideoLink(fl validator.FieldLevel) bool {
	link := fl.Field().String()
	if link == "" {
		return true
	}
	return strings.Contains(link, AllowedVideoHost)
}

// Register регистрирует правило videolink в переданном валидаторе.
func Register(v *validator.Validate) {
	// RegisterValidation возвращает ошибку только при пустом теге.
	_ = v.RegisterValidation(VideoLinkTag, VideoLink)
}
