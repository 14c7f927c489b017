// Package subscription содержит чистые вспомогательные функции для
// отображения данных подписки: человекочитаемые метки типа и статуса
// и подсчёт оставшихся дней до окончания доступа.
//
// Метки возвращаются на испанском языке — языке интерфейса платформы.
// Неизвестные значения возвращаются как есть, без ошибки.
package subscription

import (
	"math"
	"time"

	"github.com/magabrotheeeer/course-access/internal/models"
)

var typeLabels = map[models.SubscriptionType]string{
	models.TypeOneTime:    "Pago único",
	models.TypeMonthly:    "Mensual",
	models.TypeQuarterly:  "Trimestral",
	models.TypeSemiannual: "Semestral",
	models.TypeAnnual:     "Anual",
}

var statusLabels = map[models.SubscriptionStatus]string{
	models.StatusActive:    "Activa",
	models.StatusCanceled:  "Cancelada",
	models.StatusExpired:   "Expirada",
	models.StatusSuspended: "Suspendida",
	models.StatusPastDue:   "Pago pendiente",
	models.StatusNone:      "Sin suscripción",
}

// FormatType возвращает метку типа покупки.
// Для неизвестного типа возвращает исходную строку.
func FormatType(t models.SubscriptionType) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// FormatStatus возвращает метку статуса подписки.
// Для неизвестного статуса возвращает исходную строку.
func FormatStatus(s models.SubscriptionStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// DaysUntilExpiration возвращает количество дней до окончания доступа,
// округлённое вверх и никогда не отрицательное.
// Возвращает nil тогда и только тогда, когда дата окончания не задана.
func DaysUntilExpiration(expiresAt *time.Time) *int {
	if expiresAt == nil {
		return nil
	}
	days := int(math.Ceil(time.Until(*expiresAt).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}
