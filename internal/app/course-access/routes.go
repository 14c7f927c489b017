package courseaccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	accessactive "github.com/magabrotheeeer/course-access/internal/http/handlers/access/active"
	accesscheck "github.com/magabrotheeeer/course-access/internal/http/handlers/access/check"
	accesshistory "github.com/magabrotheeeer/course-access/internal/http/handlers/access/history"
	"github.com/magabrotheeeer/course-access/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/course-access/internal/http/handlers/auth/register"
	coursecreate "github.com/magabrotheeeer/course-access/internal/http/handlers/course/create"
	courselist "github.com/magabrotheeeer/course-access/internal/http/handlers/course/list"
	courseread "github.com/magabrotheeeer/course-access/internal/http/handlers/course/read"
	enrollmentgrant "github.com/magabrotheeeer/course-access/internal/http/handlers/enrollment/grant"
	enrollmentrevoke "github.com/magabrotheeeer/course-access/internal/http/handlers/enrollment/revoke"
	"github.com/magabrotheeeer/course-access/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-access/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/course-access/internal/services/auth"
	courseservice "github.com/magabrotheeeer/course-access/internal/services/course"
	enrollmentservice "github.com/magabrotheeeer/course-access/internal/services/enrollment"
	entitlementservice "github.com/magabrotheeeer/course-access/internal/services/entitlement"
)

// RouteServices — бизнес-сервисы, необходимые маршрутам приложения.
type RouteServices struct {
	Auth        *authservice.Service
	Entitlement *entitlementservice.Service
	Course      *courseservice.Service
	Enrollment  *enrollmentservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc RouteServices) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/courses", courselist.New(logger, svc.Course).ServeHTTP)
			r.Get("/courses/active", accessactive.New(logger, svc.Entitlement).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, svc.Entitlement, svc.Course).ServeHTTP)
			r.Get("/courses/{id}/access", accesscheck.New(logger, svc.Entitlement).ServeHTTP)
			r.Get("/courses/{id}/history", accesshistory.New(logger, svc.Entitlement).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/courses", coursecreate.New(logger, svc.Course).ServeHTTP)
				r.Post("/enrollments", enrollmentgrant.New(logger, svc.Enrollment).ServeHTTP)
				r.Delete("/enrollments/{user_uid}/{id}", enrollmentrevoke.New(logger, svc.Enrollment).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
