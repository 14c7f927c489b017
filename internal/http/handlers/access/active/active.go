// Package active реализует HTTP-обработчик списка активных курсов пользователя.
//
// Handler извлекает UID пользователя из контекста и возвращает курсы,
// к которым у него есть действующий доступ, с краткой информацией о каждом.
// При сбое хранилища список пуст, ошибка наружу не отдаётся.
package active

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-access/internal/http/response"
	"github.com/magabrotheeeer/course-access/internal/models"
)

// Service описывает интерфейс получения активных курсов пользователя.
type Service interface {
	GetUserActiveCourses(ctx context.Context, userUID string) []*models.ActiveCourse
}

// Handler обрабатывает запросы на список активных курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список активных курсов
// @Description Возвращает курсы, к которым у текущего пользователя есть действующий доступ.
// @Tags Access
// @Produce  json
// @Success 200 {object} map[string]any "Список активных курсов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /courses/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.active"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	courses := h.service.GetUserActiveCourses(r.Context(), userUID)

	log.Info("active courses listed", slog.Int("count", len(courses)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"courses": courses,
	}))
}
