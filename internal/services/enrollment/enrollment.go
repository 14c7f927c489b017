// Package enrollment содержит бизнес-логику административного управления
// доступом к курсам: выдачу и отзыв подписок с записью событий жизненного
// цикла и публикацией уведомлений.
package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-access/internal/lib/sl"
	"github.com/magabrotheeeer/course-access/internal/models"
)

// EnrollmentRepository определяет методы изменения записей о подписках.
type EnrollmentRepository interface {
	// CreateEnrollment вставляет или обновляет запись для пары пользователь-курс.
	CreateEnrollment(ctx context.Context, enr models.Enrollment) error
	// FindEnrollment возвращает текущую запись для пары пользователь-курс.
	FindEnrollment(ctx context.Context, userUID string, courseID int) (*models.Enrollment, error)
	// RemoveEnrollment удаляет запись и возвращает число удалённых строк.
	RemoveEnrollment(ctx context.Context, userUID string, courseID int) (int, error)
	// CreateSubscriptionEvent добавляет событие жизненного цикла подписки.
	CreateSubscriptionEvent(ctx context.Context, ev models.SubscriptionEvent) (int, error)
}

// Notifier публикует сообщения о событиях подписок для воркера уведомлений.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// Service реализует административные операции над подписками.
type Service struct {
	repo     EnrollmentRepository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo EnrollmentRepository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// NotificationMessage сообщение для обменника notifications.
type NotificationMessage struct {
	UserUID   string    `json:"user_uid"`
	CourseID  int       `json:"course_id"`
	EventType string    `json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Grant выдаёт пользователю доступ к курсу. Для периодических типов
// статус выставляется в active; дата окончания берётся из запроса
// (RFC3339) и для one_time всегда отсутствует.
func (s *Service) Grant(ctx context.Context, req models.DummyEnrollment) error {
	subType := models.SubscriptionType(req.Type)

	enr := models.Enrollment{
		UserUID:  req.UserUID,
		CourseID: req.CourseID,
		Type:     subType,
	}

	if subType.IsRecurring() {
		enr.Status = models.StatusActive
		if req.ExpiresAt != "" {
			expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
			if err != nil {
				return fmt.Errorf("invalid expires_at: %w", err)
			}
			enr.ExpiresAt = &expiresAt
			enr.NextBillingDate = &expiresAt
		}
	}

	if err := s.repo.CreateEnrollment(ctx, enr); err != nil {
		return err
	}
	s.log.Info("granted course access",
		slog.String("user_uid", req.UserUID),
		slog.Int("course_id", req.CourseID),
		slog.String("type", req.Type))

	s.recordEvent(ctx, models.SubscriptionEvent{
		UserUID:   req.UserUID,
		CourseID:  req.CourseID,
		EventType: "granted",
		NewStatus: enr.Status,
	})
	return nil
}

// Revoke отзывает доступ пользователя к курсу.
// Возвращает число удалённых записей (0, если записи не было).
func (s *Service) Revoke(ctx context.Context, userUID string, courseID int) (int, error) {
	var oldStatus models.SubscriptionStatus
	if current, err := s.repo.FindEnrollment(ctx, userUID, courseID); err == nil {
		oldStatus = current.Status
	}

	count, err := s.repo.RemoveEnrollment(ctx, userUID, courseID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	s.log.Info("revoked course access",
		slog.String("user_uid", userUID),
		slog.Int("course_id", courseID))

	s.recordEvent(ctx, models.SubscriptionEvent{
		UserUID:   userUID,
		CourseID:  courseID,
		EventType: "revoked",
		OldStatus: oldStatus,
	})
	return count, nil
}

// recordEvent сохраняет событие подписки и публикует уведомление.
// Сбои обеих операций логируются и не прерывают основную мутацию.
func (s *Service) recordEvent(ctx context.Context, ev models.SubscriptionEvent) {
	if _, err := s.repo.CreateSubscriptionEvent(ctx, ev); err != nil {
		s.log.Warn("failed to record subscription event",
			slog.String("event_type", ev.EventType), sl.Err(err))
	}
	msg := NotificationMessage{
		UserUID:   ev.UserUID,
		CourseID:  ev.CourseID,
		EventType: ev.EventType,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifier.Publish("subscription", msg); err != nil {
		s.log.Warn("failed to publish notification",
			slog.String("event_type", ev.EventType), sl.Err(err))
	}
}
