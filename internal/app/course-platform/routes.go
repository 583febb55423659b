package courseplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/kovalevadr/course-platform/internal/http/handlers/auth/login"
	"github.com/kovalevadr/course-platform/internal/http/handlers/health"
	"github.com/kovalevadr/course-platform/internal/http/handlers/auth/register"
	coursecreate "github.com/kovalevadr/course-platform/internal/http/handlers/course/create"
	courselist "github.com/kovalevadr/course-platform/internal/http/handlers/course/list"
	courseread "github.com/kovalevadr/course-platform/internal/http/handlers/course/read"
	courseremove "github.com/kovalevadr/course-platform/internal/http/handlers/course/remove"
	courseupdate "github.com/kovalevadr/course-platform/internal/http/handlers/course/update"
	lessoncreate "github.com/kovalevadr/course-platform/internal/http/handlers/lesson/create"
	lessonlist "github.com/kovalevadr/course-platform/internal/http/handlers/lesson/list"
	lessonread "github.com/kovalevadr/course-platform/internal/http/handlers/lesson/read"
	lessonremove "github.com/kovalevadr/course-platform/internal/http/handlers/lesson/remove"
	lessonupdate "github.com/kovalevadr/course-platform/internal/http/handlers/lesson/update"
	paymentcreate "github.com/kovalevadr/course-platform/internal/http/handlers/payment/create"
	paymentlist "github.com/kovalevadr/course-platform/internal/http/handlers/payment/list"
	paymentread "github.com/kovalevadr/course-platform/internal/http/handlers/payment/read"
	paymentremove "github.com/kovalevadr/course-platform/internal/http/handlers/payment/remove"
	paymentstatus "github.com/kovalevadr/course-platform/internal/http/handlers/payment/status"
	paymentupdate "github.com/kovalevadr/course-platform/internal/http/handlers/payment/update"
	"github.com/kovalevadr/course-platform/internal/http/handlers/subscription/toggle"
	userlist "github.com/kovalevadr/course-platform/internal/http/handlers/user/list"
	userread "github.com/kovalevadr/course-platform/internal/http/handlers/user/read"
	userremove "github.com/kovalevadr/course-platform/internal/http/handlers/user/remove"
	userupdate "github.com/kovalevadr/course-platform/internal/http/handlers/user/update"
	"github.com/kovalevadr/course-platform/internal/http/middlewarectx"
	authservice "github.com/kovalevadr/course-platform/internal/services/auth"
	courseservice "github.com/kovalevadr/course-platform/internal/services/course"
	lessonservice "github.com/kovalevadr/course-platform/internal/services/lesson"
	paymentservice "github.com/kovalevadr/course-platform/internal/services/payment"
	subscriptionservice "github.com/kovalevadr/course-platform/internal/services/subscription"
	userservice "github.com/kovalevadr/course-platform/internal/services/user"
	"github.com/kovalevadr/course-platform/internal/storage/repository"
)

// Services собирает сервисный слой, нужный маршрутам.
type Services struct {
	DB           *repository.Storage
	Auth         *authservice.AuthService
	Course       *courseservice.CourseService
	Lesson       *lessonservice.LessonService
	Subscription *subscriptionservice.SubscriptionService
	User         *userservice.UserService
	Payment      *paymentservice.PaymentService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(rate.Limit(100), 200)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, svc.DB).ServeHTTP)
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))

			r.Post("/courses", coursecreate.New(logger, svc.Course).ServeHTTP)
			r.Get("/courses", courselist.New(logger, svc.Course).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, svc.Course).ServeHTTP)
			r.Put("/courses/{id}", courseupdate.New(logger, svc.Course).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, svc.Course).ServeHTTP)
			r.Post("/courses/{course_id}/subscription", toggle.New(logger, svc.Subscription).ServeHTTP)

			r.Post("/lessons", lessoncreate.New(logger, svc.Lesson).ServeHTTP)
			r.Get("/lessons", lessonlist.New(logger, svc.Lesson).ServeHTTP)
			r.Get("/lessons/{id}", lessonread.New(logger, svc.Lesson).ServeHTTP)
			r.Put("/lessons/{id}", lessonupdate.New(logger, svc.Lesson).ServeHTTP)
			r.Delete("/lessons/{id}", lessonremove.New(logger, svc.Lesson).ServeHTTP)

			r.Post("/payments", paymentcreate.New(logger, svc.Payment).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, svc.Payment).ServeHTTP)
			r.Get("/payments/{id}", paymentread.New(logger, svc.Payment).ServeHTTP)
			r.Get("/payments/{id}/status", paymentstatus.New(logger, svc.Payment).ServeHTTP)
			r.Put("/payments/{id}", paymentupdate.New(logger, svc.Payment).ServeHTTP)
			r.Delete("/payments/{id}", paymentremove.New(logger, svc.Payment).ServeHTTP)

			r.Get("/users", userlist.New(logger, svc.User).ServeHTTP)
			r.Get("/users/{uid}", userread.New(logger, svc.User).ServeHTTP)
			r.Put("/users/{uid}", userupdate.New(logger, svc.User).ServeHTTP)
			r.Delete("/users/{uid}", userremove.New(logger, svc.User).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
