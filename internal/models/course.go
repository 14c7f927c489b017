package models

import "time"

// Course представляет курс в каталоге.
type Course struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	PaymentType  string    `json:"payment_type"` // one_time или subscription
	Price        int       `json:"price"`        // Цена в минимальных единицах валюты
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
}

// DummyCourse используется для приёма данных о курсе из JSON-запроса
// до их валидации и преобразования в Course.
type DummyCourse struct {
	Title        string `json:"title" validate:"required"`                                   // Название курса
	Description  string `json:"description" validate:"omitempty"`                            // Описание
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`                      // Обложка
	PaymentType  string `json:"payment_type" validate:"required,oneof=one_time subscription"` // Модель оплаты
	Price        int    `json:"price" validate:"required,gt=0"`                              // Цена (>0)
	IsPublished  bool   `json:"is_published"`                                                // Сразу опубликовать
}
