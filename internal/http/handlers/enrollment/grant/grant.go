// Package grant реализует HTTP-обработчик выдачи доступа к курсу администратором.
//
// Handler принимает JSON-запрос с данными о выдаче, валидирует их
// и вызывает бизнес-логику выдачи доступа.
package grant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-access/internal/http/response"
	"github.com/magabrotheeeer/course-access/internal/lib/sl"
	"github.com/magabrotheeeer/course-access/internal/models"
)

// Service описывает интерфейс бизнес-логики выдачи доступа.
type Service interface {
	Grant(ctx context.Context, req models.DummyEnrollment) error
}

// Handler обрабатывает запросы на выдачу доступа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выдать доступ к курсу
// @Description Создает или обновляет запись о подписке пользователя на курс. Доступно только администратору.
// @Tags Enrollments
// @Accept  json
// @Produce  json
// @Param request body models.DummyEnrollment true "Данные о выдаче доступа"
// @Success 200 {object} map[string]any "Доступ выдан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выдаче доступа"
// @Router /enrollments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.grant"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEnrollment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Grant(r.Context(), req); err != nil {
		log.Error("failed to grant access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not grant access"))
		return
	}

	log.Info("access granted",
		slog.String("user_uid", req.UserUID),
		slog.Int("course_id", req.CourseID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"granted": true,
	}))
}
