// Package history реализует HTTP-обработчик истории подписки на курс.
//
// Handler возвращает события жизненного цикла подписки текущего пользователя
// на указанный курс, новые первыми. При сбое хранилища список пуст.
package history

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

// Service описывает интерфейс получения истории подписки.
type Service interface {
	GetSubscriptionHistory(ctx context.Context, userUID string, courseID int) []*models.SubscriptionEvent
}

// Handler обрабатывает запросы на историю подписки.
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
// @Summary История подписки на курс
// @Description Возвращает события жизненного цикла подписки текущего пользователя на курс.
// @Tags Access
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} map[string]any "События подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID курса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /courses/{id}/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.history"
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

	events := h.service.GetSubscriptionHistory(r.Context(), userUID, courseID)

	log.Info("subscription history listed",
		slog.Int("course_id", courseID),
		slog.Int("count", len(events)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"events": events,
	}))
}
