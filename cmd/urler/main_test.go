package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/byuly/Urler/internal/app"
	"github.com/byuly/Urler/internal/config"
	"github.com/byuly/Urler/internal/models"
	"github.com/byuly/Urler/internal/notifier"
	"github.com/byuly/Urler/internal/repository"
	"github.com/byuly/Urler/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// newTestRouter собирает маршрутизатор с хранилищем в памяти
func newTestRouter(t *testing.T, trustedSubnet string) (chi.Router, *repository.MemoryRepository) {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		RunAddr:       ":8080",
		BaseURL:       "http://localhost:8080",
		JWTSecret:     "secret",
		CookieTTL:     24 * time.Hour,
		TrustedSubnet: trustedSubnet,
	}
	repo := repository.NewMemoryRepository()
	hub := notifier.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	svc := service.NewService(repo, hub, cfg.BaseURL, cfg.JWTSecret, logger)
	appInstance := app.NewApp(svc, nil, hub, logger)
	return newRouter(appInstance, svc, cfg, logger), repo
}

// Тесты маршрутизации: запросы доходят до нужных обработчиков
func TestRouter(t *testing.T) {
	r, repo := newTestRouter(t, "")

	_, err := repo.SaveURL(models.URLMapping{ShortCode: "known123", OriginalURL: "https://example.com", UserID: "user1"})
	assert.NoError(t, err)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		contentType  string
		expectedCode int
	}{
		{
			name:         "shorten",
			method:       http.MethodPost,
			path:         "/api/urls/shorten",
			body:         `{"url":"https://example.com/page"}`,
			contentType:  "application/json",
			expectedCode: http.StatusCreated,
		},
		{
			name:         "redirect",
			method:       http.MethodGet,
			path:         "/known123",
			expectedCode: http.StatusTemporaryRedirect,
		},
		{
			name:         "redirect not found",
			method:       http.MethodGet,
			path:         "/missing1",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "analytics bad dates",
			method:       http.MethodGet,
			path:         "/api/urls/analytics/known123?startDate=bad&endDate=bad",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "total clicks",
			method:       http.MethodGet,
			path:         "/api/urls/totalClicks?startDate=2025-03-10&endDate=2025-03-11",
			expectedCode: http.StatusOK,
		},
		{
			name:         "ping without database",
			method:       http.MethodGet,
			path:         "/ping",
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "stats denied without trusted subnet",
			method:       http.MethodGet,
			path:         "/api/internal/stats",
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", tt.contentType)
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.expectedCode, rr.Code, "Status code mismatch")
		})
	}
}

// Тест: middleware аутентификации выдаёт куку и запросы пользователя связываются
func TestRouterAuthFlow(t *testing.T) {
	r, _ := newTestRouter(t, "")

	// Создаём короткий URL: новому посетителю выдаётся кука
	req := httptest.NewRequest(http.MethodPost, "/api/urls/shorten",
		strings.NewReader(`{"url":"https://example.com","custom_alias":"mine1234"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	cookies := rr.Result().Cookies()
	assert.NotEmpty(t, cookies, "Expected JWT cookie")

	// Повторный запрос с той же кукой видит свои URL
	req = httptest.NewRequest(http.MethodGet, "/api/urls/myurls", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var urls []models.URLResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &urls))
	assert.Len(t, urls, 1)
	assert.Equal(t, "mine1234", urls[0].ShortCode)

	// Без куки другой посетитель не видит чужих URL
	req = httptest.NewRequest(http.MethodGet, "/api/urls/myurls", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// Тест: статистика доступна из доверенной подсети
func TestRouterStatsTrustedSubnet(t *testing.T) {
	r, repo := newTestRouter(t, "192.168.1.0/24")

	_, err := repo.SaveURL(models.URLMapping{ShortCode: "stat0001", OriginalURL: "https://example.com", UserID: "user1"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	req.Header.Set("X-Real-IP", "192.168.1.50")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"urls":1`)
}
