// Package list реализует HTTP-обработчик получения списка платежей.
//
// Администратор видит все платежи и может фильтровать их параметрами
// запроса; обычный пользователь получает только собственные платежи.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/http/middlewarectx"
	"github.com/kovalevadr/course-platform/internal/http/response"
	"github.com/kovalevadr/course-platform/internal/lib/sl"
	"github.com/kovalevadr/course-platform/internal/models"
)

// Handler управляет HTTP-запросами на получение списка платежей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения платежей.
type Service interface {
	List(ctx context.Context, actor authz.Actor, filter models.PaymentFilter) ([]*models.Payment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список платежей
// @Description Возвращает платежи. Администратору доступны все платежи с фильтрацией по курсу, уроку и способу оплаты; остальным — только собственные.
// @Tags Payments
// @Produce  json
// @Param course_id query int false "Фильтр по ID курса"
// @Param lesson_id query int false "Фильтр по ID урока"
// @Param form_of_payment query string false "Фильтр по способу оплаты (cash или transfer)"
// @Param order_by_date query bool false "Сортировка по дате платежа"
// @Success 200 {object} map[string]any "Список платежей"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры фильтра"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := parseFilter(r)
	if err != nil {
		log.Error("invalid filter params", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid filter params"))
		return
	}

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	payments, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		status, resp := response.MapError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("payments listed", slog.Int("count", len(payments)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payments": payments,
	}))
}

func parseFilter(r *http.Request) (models.PaymentFilter, error) {
	var filter models.PaymentFilter

	if raw := r.URL.Query().Get("course_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return models.PaymentFilter{}, err
		}
		filter.CourseID = &id
	}
	if raw := r.URL.Query().Get("lesson_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return models.PaymentFilter{}, err
		}
		filter.LessonID = &id
	}
	if raw := r.URL.Query().Get("form_of_payment"); raw != "" {
		form := raw
		filter.FormOfPayment = &form
	}
	if raw := r.URL.Query().Get("order_by_date"); raw != "" {
		orderByDate, err := strconv.ParseBool(raw)
		if err != nil {
			return models.PaymentFilter{}, err
		}
		filter.OrderByDate = orderByDate
	}
	return filter, nil
}
