package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-access/internal/models"
)

// FindEnrollment возвращает запись о подписке для пары пользователь-курс.
// Если записи нет, возвращает ErrEnrollmentNotFound.
func (s *Storage) FindEnrollment(ctx context.Context, userUID string, courseID int) (*models.Enrollment, error) {
	const op = "storage.FindEnrollment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, course_id, subscription_type, subscription_status,
			      subscription_expires_at, next_billing_date, created_at
			  FROM user_courses
			  WHERE user_uid = $1 AND course_id = $2`
	row := s.DB.QueryRowContext(ctx, query, userUID, courseID)

	var enr models.Enrollment
	var status sql.NullString
	var expiresAt, nextBilling sql.NullTime
	if err := row.Scan(&enr.UserUID, &enr.CourseID, &enr.Type, &status,
		&expiresAt, &nextBilling, &enr.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrEnrollmentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if status.Valid {
		enr.Status = models.SubscriptionStatus(status.String)
	}
	if expiresAt.Valid {
		enr.ExpiresAt = &expiresAt.Time
	}
	if nextBilling.Valid {
		enr.NextBillingDate = &nextBilling.Time
	}
	return &enr, nil
}

// ListActiveEnrollments возвращает записи пользователя со статусом active
// либо типом one_time, объединённые с краткой информацией о курсе.
// Проверка неистёкшей даты намеренно не выполняется на стороне базы:
// её делает бизнес-логика.
func (s *Storage) ListActiveEnrollments(ctx context.Context, userUID string) ([]*models.ActiveCourse, error) {
	const op = "storage.ListActiveEnrollments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uc.user_uid, uc.course_id, uc.subscription_type, uc.subscription_status,
			      uc.subscription_expires_at, uc.next_billing_date, uc.created_at,
			      c.title, c.description, c.thumbnail_url, c.payment_type
			  FROM user_courses uc
			  JOIN courses c ON c.id = uc.course_id
			  WHERE uc.user_uid = $1
			    AND (uc.subscription_status = 'active' OR uc.subscription_type = 'one_time')
			  ORDER BY uc.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ActiveCourse
	for rows.Next() {
		var item models.ActiveCourse
		var status sql.NullString
		var expiresAt, nextBilling sql.NullTime
		if err := rows.Scan(&item.UserUID, &item.CourseID, &item.Type, &status,
			&expiresAt, &nextBilling, &item.CreatedAt,
			&item.Title, &item.Description, &item.ThumbnailURL, &item.PaymentType); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if status.Valid {
			item.Status = models.SubscriptionStatus(status.String)
		}
		if expiresAt.Valid {
			item.ExpiresAt = &expiresAt.Time
		}
		if nextBilling.Valid {
			item.NextBillingDate = &nextBilling.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscriptionEvents возвращает события подписки для пары
// пользователь-курс, новые первыми.
func (s *Storage) ListSubscriptionEvents(ctx context.Context, userUID string, courseID int) ([]*models.SubscriptionEvent, error) {
	const op = "storage.ListSubscriptionEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_id, event_type, old_status, new_status, created_at
			  FROM subscription_events
			  WHERE user_uid = $1 AND course_id = $2
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionEvent
	for rows.Next() {
		var ev models.SubscriptionEvent
		var oldStatus, newStatus sql.NullString
		if err := rows.Scan(&ev.ID, &ev.UserUID, &ev.CourseID, &ev.EventType,
			&oldStatus, &newStatus, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if oldStatus.Valid {
			ev.OldStatus = models.SubscriptionStatus(oldStatus.String)
		}
		if newStatus.Valid {
			ev.NewStatus = models.SubscriptionStatus(newStatus.String)
		}
		result = append(result, &ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateEnrollment вставляет или обновляет запись о подписке для пары
// пользователь-курс. Уникальность пары обеспечивается ограничением таблицы.
func (s *Storage) CreateEnrollment(ctx context.Context, enr models.Enrollment) error {
	const op = "storage.CreateEnrollment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_courses (user_uid, course_id, subscription_type,
			      subscription_status, subscription_expires_at, next_billing_date)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_uid, course_id) DO UPDATE
			  SET subscription_type = EXCLUDED.subscription_type,
			      subscription_status = EXCLUDED.subscription_status,
			      subscription_expires_at = EXCLUDED.subscription_expires_at,
			      next_billing_date = EXCLUDED.next_billing_date`
	var status any
	if enr.Status != "" {
		status = string(enr.Status)
	}
	_, err := s.DB.ExecContext(ctx, query,
		enr.UserUID, enr.CourseID, enr.Type, status, enr.ExpiresAt, enr.NextBillingDate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveEnrollment удаляет запись о подписке и возвращает количество удалённых строк.
func (s *Storage) RemoveEnrollment(ctx context.Context, userUID string, courseID int) (int, error) {
	const op = "storage.RemoveEnrollment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM user_courses WHERE user_uid = $1 AND course_id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CreateSubscriptionEvent добавляет событие жизненного цикла подписки
// и возвращает его ID.
func (s *Storage) CreateSubscriptionEvent(ctx context.Context, ev models.SubscriptionEvent) (int, error) {
	const op = "storage.CreateSubscriptionEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscription_events (user_uid, course_id, event_type, old_status, new_status)
			  VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		ev.UserUID, ev.CourseID, ev.EventType, string(ev.OldStatus), string(ev.NewStatus)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
