// Package read реализует HTTP-обработчик для получения содержимого курса по ID.
//
// Handler сначала требует действующий доступ пользователя к курсу и только
// затем отдаёт данные курса. При отказе в доступе возвращает 403 с пояснением.
package read

import (
	"context"
	"errors"
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
	"github.com/magabrotheeeer/course-access/internal/services/entitlement"
	"github.com/magabrotheeeer/course-access/internal/storage/repository"
)

// AccessService описывает интерфейс проверки доступа с прерыванием.
type AccessService interface {
	RequireCourseAccess(ctx context.Context, userUID string, courseID int) (*models.AccessResult, error)
}

// CourseService описывает интерфейс чтения курса.
type CourseService interface {
	Read(ctx context.Context, id int) (*models.Course, error)
}

// Handler обрабатывает запросы на получение курса.
type Handler struct {
	log     *slog.Logger
	access  AccessService
	courses CourseService
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, access AccessService, courses CourseService) *Handler {
	return &Handler{
		log:     log,
		access:  access,
		courses: courses,
	}
}

// ServeHTTP godoc
// @Summary Получить курс
// @Description Возвращает данные курса, если у текущего пользователя есть действующий доступ.
// @Tags Courses
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} map[string]any "Данные курса и результат проверки доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID курса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к курсу"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"
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

	access, err := h.access.RequireCourseAccess(r.Context(), userUID, courseID)
	if err != nil {
		if errors.Is(err, entitlement.ErrAccessDenied) {
			log.Info("access denied", slog.Int("course_id", courseID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to check access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	course, err := h.courses.Read(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			log.Error("course not found", slog.Int("course_id", courseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to read course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read course"))
		return
	}

	log.Info("course read", slog.Int("course_id", courseID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course": course,
		"access": access,
	}))
}
