// Package app содержит HTTP-обработчики сервиса коротких URL.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/byuly/Urler/internal/middleware"
	"github.com/byuly/Urler/internal/models"
	"github.com/byuly/Urler/internal/notifier"
	"github.com/byuly/Urler/internal/repository"
	"github.com/byuly/Urler/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	// dateTimeLayout задаёт формат параметров startDate/endDate аналитики URL
	dateTimeLayout = "2006-01-02T15:04:05"
	// dateLayout задаёт формат параметров startDate/endDate суммарной аналитики
	dateLayout = "2006-01-02"
)

// App содержит хендлеры и зависимости
type App struct {
	svc    *service.Service
	db     repository.Database
	hub    *notifier.Hub
	logger *zap.Logger
}

// NewApp создаёт новое приложение
func NewApp(svc *service.Service, db repository.Database, hub *notifier.Hub, logger *zap.Logger) *App {
	return &App{svc: svc, db: db, hub: hub, logger: logger}
}

// HandleShorten обрабатывает POST-запросы на "/api/urls/shorten"
func (a *App) HandleShorten(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeError(w, r, http.StatusBadRequest, "Bad Request", "Method not allowed", nil)
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		a.writeError(w, r, http.StatusBadRequest, "Bad Request", "Content-Type must be application/json", nil)
		return
	}

	var reqBody models.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		a.writeError(w, r, http.StatusBadRequest, "Bad Request", "Invalid JSON", nil)
		return
	}

	if details := validateShortenRequest(reqBody); len(details) > 0 {
		a.writeError(w, r, http.StatusBadRequest, "Validation Failed",
			"Request validation failed. Please check the details.", details)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Missing user identity", nil)
		return
	}

	mapping, err := a.svc.CreateShortURL(reqBody.URL, reqBody.CustomAlias, userID)
	if err != nil {
		var conflict *service.AliasConflictError
		if errors.As(err, &conflict) {
			a.writeError(w, r, http.StatusConflict, "Conflict", conflict.Error(), nil)
			return
		}
		if errors.Is(err, service.ErrEmptyURL) {
			a.writeError(w, r, http.StatusBadRequest, "Bad Request", err.Error(), nil)
			return
		}
		a.logger.Error("Failed to create short URL", zap.Error(err))
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred", nil)
		return
	}

	a.writeJSONResponse(w, http.StatusCreated, a.toURLResponse(mapping))
}

// validateShortenRequest проверяет поля запроса на создание короткого URL
func validateShortenRequest(req models.ShortenRequest) []string {
	var details []string
	if req.URL == "" {
		details = append(details, "url: must not be blank")
	} else if _, err := url.ParseRequestURI(req.URL); err != nil {
		details = append(details, "url: must be a valid URL")
	}
	return details
}

// HandleRedirect обрабатывает GET-запросы на "/{code}": фиксирует клик и
// отвечает редиректом на оригинальный URL
func (a *App) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, r, http.StatusBadRequest, "Bad Request", "Method not allowed", nil)
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		a.writeError(w, r, http.StatusBadRequest, "Bad Request", "Missing short code", nil)
		return
	}

	mapping, err := a.svc.RecordClick(code)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			a.writeError(w, r, http.StatusNotFound, "Not Found",
				fmt.Sprintf("URL '%s' not found.", code), nil)
			return
		}
		a.logger.Error("Failed to record click", zap.String("short_code", code), zap.Error(err))
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred", nil)
		return
	}

	w.Header().Set("Location", mapping.OriginalURL)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

// HandleUserURLs обрабатывает GET-запросы на "/api/urls/myurls"
func (a *App) HandleUserURLs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Missing user identity", nil)
		return
	}

	urls, err := a.svc.GetURLsByUserID(userID)
	if err != nil {
		a.logger.Error("Failed to list user URLs", zap.String("user_id", userID), zap.Error(err))
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred", nil)
		return
	}

	if len(urls) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]models.URLResponse, len(urls))
	for i, u := range urls {
		resp[i] = a.toURLResponse(u)
	}
	a.writeJSONResponse(w, http.StatusOK, resp)
}

// HandleURLAnalytics обрабатывает GET-запросы на "/api/urls/analytics/{code}"
func (a *App) HandleURLAnalytics(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var details []string
	start, err := time.ParseInLocation(dateTimeLayout, r.URL.Query().Get("startDate"), time.Local)
	if err != nil {
		details = append(details, "startDate: must be an ISO-8601 local date-time")
	}
	end, err := time.ParseInLocation(dateTimeLayout, r.URL.Query().Get("endDate"), time.Local)
	if err != nil {
		details = append(details, "endDate: must be an ISO-8601 local date-time")
	}
	if len(details) > 0 {
		a.writeError(w, r, http.StatusBadRequest, "Validation Failed",
			"Request validation failed. Please check the details.", details)
		return
	}

	days, err := a.svc.ClicksByDay(code, start, end)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			a.writeError(w, r, http.StatusNotFound, "Not Found",
				fmt.Sprintf("URL '%s' not found.", code), nil)
			return
		}
		a.logger.Error("Failed to aggregate clicks", zap.String("short_code", code), zap.Error(err))
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred", nil)
		return
	}

	a.writeJSONResponse(w, http.StatusOK, days)
}

// HandleTotalClicks обрабатывает GET-запросы на "/api/urls/totalClicks"
func (a *App) HandleTotalClicks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		a.writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Missing user identity", nil)
		return
	}

	var details []string
	start, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("startDate"), time.Local)
	if err != nil {
		details = append(details, "startDate: must be an ISO-8601 date")
	}
	end, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("endDate"), time.Local)
	if err != nil {
		details = append(details, "endDate: must be an ISO-8601 date")
	}
	if len(details) > 0 {
		a.writeError(w, r, http.StatusBadRequest, "Validation Failed",
			"Request validation failed. Please check the details.", details)
		return
	}

	totals, err := a.svc.TotalClicksByUser(userID, start, end)
	if err != nil {
		a.logger.Error("Failed to aggregate user clicks", zap.String("user_id", userID), zap.Error(err))
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred", nil)
		return
	}

	a.writeJSONResponse(w, http.StatusOK, totals)
}

// HandleClickStream обрабатывает GET-запросы на "/api/urls/{code}/clicks/stream":
// отдаёт события кликов по URL потоком Server-Sent Events
func (a *App) HandleClickStream(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	mapping, exists := a.svc.Get(code)
	if !exists {
		a.writeError(w, r, http.StatusNotFound, "Not Found",
			fmt.Sprintf("URL '%s' not found.", code), nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"Streaming is not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := a.hub.Subscribe(mapping.ID)
	defer a.hub.Unsubscribe(mapping.ID, ch)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				a.logger.Error("Failed to encode click message", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// HandlePing обрабатывает GET-запросы на "/ping"
func (a *App) HandlePing(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		http.Error(w, "Database not configured", http.StatusInternalServerError)
		return
	}
	if err := a.db.Ping(); err != nil {
		http.Error(w, "Database connection failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleStats обрабатывает GET-запросы на "/api/internal/stats"
func (a *App) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.GetStats()
	if err != nil {
		a.logger.Error("Failed to get stats", zap.Error(err))
		a.writeError(w, r, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred", nil)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, stats)
}

// toURLResponse преобразует связь в представление для API
func (a *App) toURLResponse(u models.URLMapping) models.URLResponse {
	return models.URLResponse{
		ID:          u.ID,
		URL:         u.OriginalURL,
		ShortCode:   u.ShortCode,
		ShortURL:    a.svc.BuildShortURL(u.ShortCode),
		Clicks:      u.Clicks,
		DateCreated: u.CreatedAt,
		UserID:      u.UserID,
	}
}

// writeError пишет стандартное тело ошибки
func (a *App) writeError(w http.ResponseWriter, r *http.Request, status int, label, message string, details []string) {
	a.writeJSONResponse(w, status, models.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      r.URL.Path,
		Details:   details,
	})
}

// writeJSONResponse пишет JSON-ответ с проверкой ошибок
func (a *App) writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		a.logger.Error("Failed to write response", zap.Error(err))
	}
}
