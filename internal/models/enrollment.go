// Package models содержит доменные структуры сервиса доступа к курсам:
// запись о покупке/подписке пользователя на курс, производный результат
// проверки доступа и события жизненного цикла подписки.
package models

import "time"

// SubscriptionType тип покупки курса. Хранится строкой в базе данных,
// неизвестные значения сохраняются как есть и трактуются консервативно.
type SubscriptionType string

// Поддерживаемые типы покупки.
const (
	TypeOneTime    SubscriptionType = "one_time"
	TypeMonthly    SubscriptionType = "monthly"
	TypeQuarterly  SubscriptionType = "quarterly"
	TypeSemiannual SubscriptionType = "semiannual"
	TypeAnnual     SubscriptionType = "annual"
)

// Known сообщает, входит ли значение в известный набор типов.
func (t SubscriptionType) Known() bool {
	switch t {
	case TypeOneTime, TypeMonthly, TypeQuarterly, TypeSemiannual, TypeAnnual:
		return true
	}
	return false
}

// IsRecurring сообщает, требует ли тип периодического продления.
// Любой тип кроме one_time (включая неизвестные) считается периодическим.
func (t SubscriptionType) IsRecurring() bool {
	return t != TypeOneTime
}

// SubscriptionStatus биллинговый статус подписки. Для one_time не используется.
type SubscriptionStatus string

// Возможные статусы подписки. StatusNone не хранится в базе —
// возвращается, когда записи о подписке нет вовсе.
const (
	StatusActive    SubscriptionStatus = "active"
	StatusCanceled  SubscriptionStatus = "canceled"
	StatusExpired   SubscriptionStatus = "expired"
	StatusSuspended SubscriptionStatus = "suspended"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusNone      SubscriptionStatus = "none"
)

// Known сообщает, входит ли значение в известный набор статусов.
func (s SubscriptionStatus) Known() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusExpired, StatusSuspended, StatusPastDue, StatusNone:
		return true
	}
	return false
}

// Enrollment представляет запись о доступе пользователя к курсу.
// На пару (UserUID, CourseID) существует не более одной записи.
// ExpiresAt равный nil означает бессрочный доступ (для one_time всегда nil).
// NextBillingDate информационное поле, в решении о доступе не участвует.
type Enrollment struct {
	UserUID         string             // UID пользователя
	CourseID        int                // ID курса
	Type            SubscriptionType   // Тип покупки
	Status          SubscriptionStatus // Биллинговый статус
	ExpiresAt       *time.Time         // Дата окончания доступа, nil — бессрочно
	NextBillingDate *time.Time         // Дата следующего списания
	CreatedAt       time.Time          // Дата создания записи
}

// AccessResult результат проверки доступа пользователя к курсу.
// Вычисляется заново при каждом вызове и нигде не сохраняется.
type AccessResult struct {
	HasAccess       bool               `json:"has_access"`
	Status          SubscriptionStatus `json:"status"`
	ExpiresAt       *time.Time         `json:"expires_at,omitempty"`
	IsExpired       bool               `json:"is_expired"`
	Type            SubscriptionType   `json:"subscription_type,omitempty"`
	NextBillingDate *time.Time         `json:"next_billing_date,omitempty"`
	Message         string             `json:"message"`
}

// ActiveCourse запись о подписке, объединённая с краткой информацией о курсе.
// Используется для списка активных курсов на дашборде.
type ActiveCourse struct {
	Enrollment
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	PaymentType  string `json:"payment_type"`
}

// SubscriptionEvent событие жизненного цикла подписки на курс.
type SubscriptionEvent struct {
	ID        int                `json:"id"`
	UserUID   string             `json:"user_uid"`
	CourseID  int                `json:"course_id"`
	EventType string             `json:"event_type"`
	OldStatus SubscriptionStatus `json:"old_status,omitempty"`
	NewStatus SubscriptionStatus `json:"new_status,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// DummyEnrollment используется для приёма данных о выдаче доступа
// из JSON-запроса до их валидации и преобразования в Enrollment.
// Дата окончания приходит строкой в формате RFC3339.
type DummyEnrollment struct {
	UserUID   string `json:"user_uid" validate:"required,uuid"`                                                    // UID пользователя
	CourseID  int    `json:"course_id" validate:"required,gt=0"`                                                   // ID курса
	Type      string `json:"subscription_type" validate:"required,oneof=one_time monthly quarterly semiannual annual"` // Тип покупки
	ExpiresAt string `json:"expires_at,omitempty" validate:"omitempty"`                                            // Дата окончания (RFC3339, опционально)
}
