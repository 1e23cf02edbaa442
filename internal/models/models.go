package models

import "time"

// URLMapping представляет сохранённую связь короткого кода и оригинального URL
type URLMapping struct {
	ID          int64     `json:"id" db:"id"`
	ShortCode   string    `json:"short_code" db:"short_code"`
	OriginalURL string    `json:"original_url" db:"original_url"`
	UserID      string    `json:"user_id" db:"user_id"`
	Clicks      int64     `json:"clicks" db:"click_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ClickEvent представляет одно событие перехода по короткому URL
type ClickEvent struct {
	ID         int64     `json:"id" db:"id"`
	URLID      int64     `json:"url_id" db:"url_id"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}

// ClickMessage представляет сообщение о клике для подписчиков топика URL
type ClickMessage struct {
	URLID     int64     `json:"urlId"`
	Clicks    int64     `json:"clicks"`
	ClickDate time.Time `json:"clickDate"`
}

// Stats представляет суммарную статистику сервиса
type Stats struct {
	URLs   int64 `json:"urls"`
	Clicks int64 `json:"clicks"`
}

// ShortenRequest представляет запрос на создание короткого URL
type ShortenRequest struct {
	URL         string `json:"url"`
	CustomAlias string `json:"custom_alias,omitempty"`
}

// URLResponse представляет созданный короткий URL в ответах API
type URLResponse struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	Clicks      int64     `json:"clicks"`
	DateCreated time.Time `json:"date_created"`
	UserID      string    `json:"user_id"`
}

// DayClicks представляет количество кликов за один календарный день
type DayClicks struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ErrorResponse представляет тело ошибки в ответах API
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Details   []string  `json:"details,omitempty"`
}
