// Package entitlement содержит бизнес-логику проверки права пользователя
// на доступ к содержимому курса.
//
// Правило доступа: покупка one_time даёт бессрочный доступ независимо от
// биллингового статуса; любой периодический тип требует одновременно
// статус active и неистёкшую дату окончания. Результат вычисляется заново
// при каждом вызове и не кешируется.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-access/internal/lib/sl"
	"github.com/magabrotheeeer/course-access/internal/lib/subscription"
	"github.com/magabrotheeeer/course-access/internal/models"
	"github.com/magabrotheeeer/course-access/internal/storage/repository"
)

// ErrAccessDenied возвращается RequireCourseAccess, когда у пользователя
// нет действующего доступа к курсу.
var ErrAccessDenied = errors.New("access denied")

// EnrollmentRepository определяет методы чтения записей о подписках из хранилища.
type EnrollmentRepository interface {
	// FindEnrollment возвращает запись для пары пользователь-курс
	// или repository.ErrEnrollmentNotFound.
	FindEnrollment(ctx context.Context, userUID string, courseID int) (*models.Enrollment, error)
	// ListActiveEnrollments возвращает записи со статусом active либо типом one_time,
	// объединённые с краткой информацией о курсе. Запрос намеренно выбирает шире,
	// чем нужно: проверка неистёкшей даты выполняется в бизнес-логике.
	ListActiveEnrollments(ctx context.Context, userUID string) ([]*models.ActiveCourse, error)
	// ListSubscriptionEvents возвращает события подписки, новые первыми.
	ListSubscriptionEvents(ctx context.Context, userUID string, courseID int) ([]*models.SubscriptionEvent, error)
}

// Service реализует проверку доступа к курсам.
type Service struct {
	repo EnrollmentRepository
	log  *slog.Logger
}

// New создает новый Service.
func New(repo EnrollmentRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// CheckCourseAccess классифицирует право пользователя на доступ к курсу.
//
// Отсутствие записи и ошибка хранилища сворачиваются в один и тот же
// результат "нет доступа": вызывающий код по значению не отличает отказ
// от сбоя бэкенда. Ошибка логируется, наружу не выходит.
func (s *Service) CheckCourseAccess(ctx context.Context, userUID string, courseID int) *models.AccessResult {
	const op = "entitlement.CheckCourseAccess"

	enr, err := s.repo.FindEnrollment(ctx, userUID, courseID)
	if err != nil {
		if !errors.Is(err, repository.ErrEnrollmentNotFound) {
			s.log.Error("failed to find enrollment",
				slog.String("op", op),
				slog.String("user_uid", userUID),
				slog.Int("course_id", courseID),
				sl.Err(err))
		}
		return &models.AccessResult{
			HasAccess: false,
			Status:    models.StatusNone,
			IsExpired: false,
			Message:   "Sin acceso. Se requiere la compra del curso.",
		}
	}

	// Разовая покупка: бессрочный доступ, биллинговый статус игнорируется.
	if enr.Type == models.TypeOneTime {
		return &models.AccessResult{
			HasAccess:       true,
			Status:          models.StatusActive,
			ExpiresAt:       nil,
			IsExpired:       false,
			Type:            enr.Type,
			NextBillingDate: enr.NextBillingDate,
			Message:         "Acceso completo permanente",
		}
	}

	isExpired := enr.ExpiresAt != nil && !enr.ExpiresAt.After(time.Now())
	hasAccess := enr.Status == models.StatusActive && !isExpired

	return &models.AccessResult{
		HasAccess:       hasAccess,
		Status:          enr.Status,
		ExpiresAt:       enr.ExpiresAt,
		IsExpired:       isExpired,
		Type:            enr.Type,
		NextBillingDate: enr.NextBillingDate,
		Message:         buildMessage(hasAccess, isExpired, enr.Status, enr.ExpiresAt),
	}
}

// RequireCourseAccess проверяет доступ и возвращает ошибку ErrAccessDenied
// с пояснением, если доступа нет. Для обработчиков, которым нужно
// прервать запрос, а не ветвиться по результату.
func (s *Service) RequireCourseAccess(ctx context.Context, userUID string, courseID int) (*models.AccessResult, error) {
	res := s.CheckCourseAccess(ctx, userUID, courseID)
	if !res.HasAccess {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, res.Message)
	}
	return res, nil
}

// GetUserActiveCourses возвращает курсы, к которым у пользователя есть
// действующий доступ, с краткой информацией о каждом курсе.
//
// Фильтрация двухфазная: хранилище отбирает по дешёвой дизъюнкции
// (статус active либо тип one_time), проверка неистёкшей даты выполняется
// здесь. При ошибке хранилища возвращается пустой список.
func (s *Service) GetUserActiveCourses(ctx context.Context, userUID string) []*models.ActiveCourse {
	const op = "entitlement.GetUserActiveCourses"

	candidates, err := s.repo.ListActiveEnrollments(ctx, userUID)
	if err != nil {
		s.log.Error("failed to list active enrollments",
			slog.String("op", op),
			slog.String("user_uid", userUID),
			sl.Err(err))
		return []*models.ActiveCourse{}
	}

	now := time.Now()
	result := make([]*models.ActiveCourse, 0, len(candidates))
	for _, c := range candidates {
		if c.Type == models.TypeOneTime {
			result = append(result, c)
			continue
		}
		if c.ExpiresAt == nil || c.ExpiresAt.After(now) {
			result = append(result, c)
		}
	}
	return result
}

// GetSubscriptionHistory возвращает события подписки для пары
// пользователь-курс, новые первыми. При ошибке хранилища возвращается
// пустой список.
func (s *Service) GetSubscriptionHistory(ctx context.Context, userUID string, courseID int) []*models.SubscriptionEvent {
	const op = "entitlement.GetSubscriptionHistory"

	events, err := s.repo.ListSubscriptionEvents(ctx, userUID, courseID)
	if err != nil {
		s.log.Error("failed to list subscription events",
			slog.String("op", op),
			slog.String("user_uid", userUID),
			slog.Int("course_id", courseID),
			sl.Err(err))
		return []*models.SubscriptionEvent{}
	}
	return events
}

// buildMessage формирует пояснение для периодических подписок.
// На решение о доступе не влияет, ветки проверяются по приоритету.
func buildMessage(hasAccess, isExpired bool, status models.SubscriptionStatus, expiresAt *time.Time) string {
	switch {
	case hasAccess:
		if expiresAt != nil {
			days := *subscription.DaysUntilExpiration(expiresAt)
			if days == 1 {
				return "Suscripción activa, expira en 1 día"
			}
			return fmt.Sprintf("Suscripción activa, expira en %d días", days)
		}
		return "Suscripción activa sin fecha de expiración"
	case status == models.StatusCanceled:
		if isExpired {
			return "Suscripción cancelada y expirada. Renueva para continuar."
		}
		return "Suscripción cancelada. El acceso se mantiene hasta la fecha de expiración."
	case status == models.StatusExpired || isExpired:
		return "Suscripción expirada. Renueva para continuar."
	case status == models.StatusSuspended:
		return "Suscripción suspendida. Verifica tu método de pago."
	case status == models.StatusPastDue:
		return "Pago pendiente. Actualiza tu método de pago."
	default:
		return ""
	}
}
