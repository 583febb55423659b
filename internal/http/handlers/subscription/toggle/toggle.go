// Package toggle реализует HTTP-обработчик переключения подписки на курс.
//
// Повторный запрос к тому же курсу снимает подписку, поэтому операция
// идемпотентна относительно пары запросов.
package toggle

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/http/middlewarectx"
	"github.com/kovalevadr/course-platform/internal/http/response"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами на переключение подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подписок.
type Service interface {
	Toggle(ctx context.Context, actor authz.Actor, courseID int) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переключить подписку на курс
// @Description Подписывает пользователя на обновления курса либо снимает подписку, если она уже есть.
// @Tags Subscriptions
// @Produce  json
// @Param course_id path int true "ID курса"
// @Success 200 {object} map[string]any "Результат переключения"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID курса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Security BearerAuth
// @Router /courses/{course_id}/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.toggle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courseID, err := strconv.Atoi(chi.URLParam(r, "course_id"))
	if err != nil {
		log.Error("invalid course id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid course id"))
		return
	}

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	message, err := h.service.Toggle(r.Context(), actor, courseID)
	if err != nil {
		log.Error("failed to toggle subscription", sl.Err(err))
		status, resp := response.MapError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription toggled",
		slog.Int("course_id", courseID),
		slog.String("result", message),
	)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": message,
	}))
}
