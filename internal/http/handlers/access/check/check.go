// Package check реализует HTTP-обработчик проверки доступа пользователя к курсу.
//
// Handler извлекает ID курса из URL и UID пользователя из контекста,
// вызывает классификатор доступа и возвращает результат в JSON-формате.
// Проверка всегда завершается успешным HTTP-ответом: отказ в доступе
// выражается полем has_access, а не статусом ответа.
package check

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-access/internal/http/response"
	"github.com/magabrotheeeer/course-access/internal/lib/sl"
	"github.com/magabrotheeeer/course-access/internal/models"
)

// Service описывает интерфейс классификатора доступа.
type Service interface {
	CheckCourseAccess(ctx context.Context, userUID string, courseID int) *models.AccessResult
}

// Handler обрабатывает запросы на проверку доступа к курсу.
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
// @Summary Проверить доступ к курсу
// @Description Возвращает результат проверки права текущего пользователя на доступ к курсу.
// @Tags Access
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} map[string]any "Результат проверки доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID курса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /courses/{id}/access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.check"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res := h.service.CheckCourseAccess(r.Context(), userUID, courseID)

	log.Info("access checked",
		slog.Int("course_id", courseID),
		slog.Bool("has_access", res.HasAccess),
		slog.String("status", string(res.Status)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"access": res,
	}))
}
