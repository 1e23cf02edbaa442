// Package proto содержит определения типов для gRPC сервиса коротких URL
package proto

// URLInfo представляет короткий URL в ответах gRPC
type URLInfo struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	ShortCode   string `json:"short_code"`
	ShortURL    string `json:"short_url"`
	Clicks      int64  `json:"clicks"`
	DateCreated string `json:"date_created"`
	UserID      string `json:"user_id"`
}

// DayClicksPoint представляет количество кликов за один календарный день
type DayClicksPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// CreateShortURLRequest представляет запрос на создание короткого URL
type CreateShortURLRequest struct {
	OriginalURL string `json:"original_url"`
	CustomAlias string `json:"custom_alias"`
}

// CreateShortURLResponse представляет ответ с созданным коротким URL
type CreateShortURLResponse struct {
	URL *URLInfo `json:"url"`
}

// ResolveURLRequest представляет запрос на разрешение короткого кода
type ResolveURLRequest struct {
	ShortCode string `json:"short_code"`
}

// ResolveURLResponse представляет ответ с оригинальным URL.
// Разрешение фиксирует клик, поэтому ответ несёт обновлённый счётчик.
type ResolveURLResponse struct {
	OriginalURL string `json:"original_url"`
	Clicks      int64  `json:"clicks"`
	Found       bool   `json:"found"`
}

// GetUserURLsRequest представляет запрос на получение URL пользователя
type GetUserURLsRequest struct{}

// GetUserURLsResponse представляет ответ со списком URL пользователя
type GetUserURLsResponse struct {
	UserUrls []*URLInfo `json:"user_urls"`
}

// GetURLAnalyticsRequest представляет запрос аналитики кликов одного URL
type GetURLAnalyticsRequest struct {
	ShortCode string `json:"short_code"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// GetURLAnalyticsResponse представляет ответ с кликами по дням
type GetURLAnalyticsResponse struct {
	Days []*DayClicksPoint `json:"days"`
}

// GetTotalClicksRequest представляет запрос суммарной аналитики пользователя
type GetTotalClicksRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// GetTotalClicksResponse представляет ответ с суммарными кликами по дням
type GetTotalClicksResponse struct {
	Days []*DayClicksPoint `json:"days"`
}

// PingRequest представляет запрос проверки состояния
type PingRequest struct{}

// PingResponse представляет ответ проверки состояния
type PingResponse struct {
	DatabaseAvailable bool `json:"database_available"`
}

// GetStatsRequest представляет запрос статистики
type GetStatsRequest struct{}

// GetStatsResponse представляет ответ со статистикой
type GetStatsResponse struct {
	UrlsCount   int64 `json:"urls_count"`
	ClicksCount int64 `json:"clicks_count"`
}
