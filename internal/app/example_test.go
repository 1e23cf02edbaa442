package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/byuly/Urler/internal/app"
	"github.com/byuly/Urler/internal/config"
	"github.com/byuly/Urler/internal/middleware"
	"github.com/byuly/Urler/internal/models"
	"github.com/byuly/Urler/internal/notifier"
	"github.com/byuly/Urler/internal/repository"
	"github.com/byuly/Urler/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// newExampleApp создаёт приложение с хранилищем в памяти для примеров
func newExampleApp() (*app.App, *service.Service, *repository.MemoryRepository, func()) {
	logger := zap.NewNop()
	repo := repository.NewMemoryRepository()
	hub := notifier.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	svc := service.NewService(repo, hub, "http://localhost:8080", "test-secret", logger)
	return app.NewApp(svc, nil, hub, logger), svc, repo, cancel
}

// ExampleApp_HandleShorten демонстрирует создание короткого URL через JSON API
func ExampleApp_HandleShorten() {
	appInstance, svc, _, cleanup := newExampleApp()
	defer cleanup()

	cfg := &config.Config{JWTSecret: "test-secret", CookieTTL: 24 * time.Hour}
	logger := zap.NewNop()

	// Создаём JSON запрос
	body := strings.NewReader(`{"url":"https://example.com/very-long-url"}`)
	req := httptest.NewRequest("POST", "/api/urls/shorten", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Создаём маршрутизатор с middleware
	r := chi.NewRouter()
	r.Use(middleware.AuthMiddleware(svc, cfg, logger))
	r.Post("/api/urls/shorten", appInstance.HandleShorten)

	// Выполняем запрос
	r.ServeHTTP(w, req)

	// Проверяем результат
	fmt.Printf("Статус код: %d\n", w.Code)

	var resp models.URLResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		fmt.Printf("Failed to parse JSON: %v\n", err)
		return
	}
	fmt.Printf("Короткий URL содержит базовый адрес: %t\n", strings.HasPrefix(resp.ShortURL, "http://localhost:8080/"))
	fmt.Printf("Код имеет правильную длину: %t\n", len(resp.ShortCode) == 8)

	// Output:
	// Статус код: 201
	// Короткий URL содержит базовый адрес: true
	// Код имеет правильную длину: true
}

// ExampleApp_HandleShorten_customAlias демонстрирует создание короткого URL с пользовательским алиасом
func ExampleApp_HandleShorten_customAlias() {
	appInstance, svc, _, cleanup := newExampleApp()
	defer cleanup()

	cfg := &config.Config{JWTSecret: "test-secret", CookieTTL: 24 * time.Hour}
	logger := zap.NewNop()

	r := chi.NewRouter()
	r.Use(middleware.AuthMiddleware(svc, cfg, logger))
	r.Post("/api/urls/shorten", appInstance.HandleShorten)

	// Первый запрос занимает алиас
	body := strings.NewReader(`{"url":"https://example.com","custom_alias":"promo"}`)
	req := httptest.NewRequest("POST", "/api/urls/shorten", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	fmt.Printf("Первый запрос: %d\n", w.Code)

	// Повторный запрос с тем же алиасом получает конфликт
	body = strings.NewReader(`{"url":"https://other.example.com","custom_alias":"promo"}`)
	req = httptest.NewRequest("POST", "/api/urls/shorten", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	fmt.Printf("Повторный запрос: %d\n", w.Code)

	var errResp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		fmt.Printf("Failed to parse JSON: %v\n", err)
		return
	}
	fmt.Printf("Сообщение: %s\n", errResp.Message)

	// Output:
	// Первый запрос: 201
	// Повторный запрос: 409
	// Сообщение: custom alias 'promo' is already taken
}

// ExampleApp_HandleRedirect демонстрирует переход по короткому URL
func ExampleApp_HandleRedirect() {
	appInstance, _, repo, cleanup := newExampleApp()
	defer cleanup()

	// Сохраняем связь напрямую в хранилище
	_, err := repo.SaveURL(models.URLMapping{
		ShortCode:   "abc12345",
		OriginalURL: "https://example.com/very-long-url",
		UserID:      "user1",
	})
	if err != nil {
		fmt.Printf("Failed to save URL: %v\n", err)
		return
	}

	r := chi.NewRouter()
	r.Get("/{code}", appInstance.HandleRedirect)

	req := httptest.NewRequest("GET", "/abc12345", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	fmt.Printf("Статус код: %d\n", w.Code)
	fmt.Printf("Location: %s\n", w.Header().Get("Location"))

	// Счётчик кликов увеличился
	mapping, _ := repo.GetByCode("abc12345")
	fmt.Printf("Кликов: %d\n", mapping.Clicks)

	// Output:
	// Статус код: 307
	// Location: https://example.com/very-long-url
	// Кликов: 1
}

// ExampleApp_HandleURLAnalytics демонстрирует аналитику кликов по дням
func ExampleApp_HandleURLAnalytics() {
	appInstance, _, repo, cleanup := newExampleApp()
	defer cleanup()

	mapping, err := repo.SaveURL(models.URLMapping{
		ShortCode:   "abc12345",
		OriginalURL: "https://example.com",
		UserID:      "user1",
	})
	if err != nil {
		fmt.Printf("Failed to save URL: %v\n", err)
		return
	}

	// Два клика 10 марта и один 11 марта
	for _, ts := range []time.Time{
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local),
		time.Date(2025, 3, 10, 15, 30, 0, 0, time.Local),
		time.Date(2025, 3, 11, 9, 0, 0, 0, time.Local),
	} {
		if _, err := repo.SaveClick(models.ClickEvent{URLID: mapping.ID, OccurredAt: ts}); err != nil {
			fmt.Printf("Failed to save click: %v\n", err)
			return
		}
	}

	r := chi.NewRouter()
	r.Get("/api/urls/analytics/{code}", appInstance.HandleURLAnalytics)

	req := httptest.NewRequest("GET",
		"/api/urls/analytics/abc12345?startDate=2025-03-10T00:00:00&endDate=2025-03-12T00:00:00", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	fmt.Printf("Статус код: %d\n", w.Code)
	fmt.Printf("Тело: %s\n", w.Body.String())

	// Output:
	// Статус код: 200
	// Тело: [{"date":"2025-03-10","count":2},{"date":"2025-03-11","count":1}]
}

// ExampleApp_HandleStats демонстрирует внутреннюю статистику сервиса
func ExampleApp_HandleStats() {
	appInstance, _, repo, cleanup := newExampleApp()
	defer cleanup()

	if _, err := repo.SaveURL(models.URLMapping{ShortCode: "abc12345", OriginalURL: "https://example.com", UserID: "user1"}); err != nil {
		fmt.Printf("Failed to save URL: %v\n", err)
		return
	}

	req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	w := httptest.NewRecorder()
	appInstance.HandleStats(w, req)

	fmt.Printf("Статус код: %d\n", w.Code)
	fmt.Printf("Тело: %s\n", w.Body.String())

	// Output:
	// Статус код: 200
	// Тело: {"urls":1,"clicks":0}
}
